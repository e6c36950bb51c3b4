package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cleared-dev/bankimport/internal/model"
)

// Parser converts one institution's statement export into canonical transactions.
// Implementations hold no state and are safe for concurrent use.
type Parser interface {
	Parse(r io.Reader) (Result, error)
	Institution() string
}

// SkippedRow is a statement row left out of a Result because it could not be normalized.
type SkippedRow struct {
	Line int
	Err  error
}

// Result is the outcome of parsing one statement.
type Result struct {
	Transactions []model.TransactionImport // in file order
	Skipped      []SkippedRow
}

func (r *Result) skip(line int, err error) {
	r.Skipped = append(r.Skipped, SkippedRow{Line: line, Err: err})
}

// Registry maps institution names to parsers. Names match exactly, case included.
type Registry struct {
	parsers map[string]Parser
	logger  *log.Logger
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry that logs nothing.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Parser),
		logger:  log.New(io.Discard),
	}
}

// WithLogger sets the logger used to report skipped rows.
func (r *Registry) WithLogger(logger *log.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a parser. Panics on duplicate institution.
func (r *Registry) Register(p Parser) {
	key := p.Institution()
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser institution: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for institution, or nil.
func (r *Registry) Get(institution string) Parser {
	return r.parsers[institution]
}

// Institutions returns the registered institution names, sorted.
func (r *Registry) Institutions() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Import parses the statement at path with the parser registered for institution.
// Unsupported institutions fail before the file is opened.
func (r *Registry) Import(path, institution string) (Result, error) {
	p := r.Get(institution)
	if p == nil {
		return Result{}, &ImportError{Kind: UnsupportedInstitution, Institution: institution}
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, &ImportError{Kind: IOError, Institution: institution, Path: path, Err: err}
	}
	defer f.Close()

	res, err := p.Parse(f)
	if err != nil {
		var ie *ImportError
		if errors.As(err, &ie) && ie.Path == "" {
			ie.Path = path
			ie.Institution = institution
		}
		return Result{}, err
	}

	for _, s := range res.Skipped {
		r.logger.Debug("skipping row", "institution", institution, "file", path, "line", s.Line, "err", s.Err)
	}
	r.logger.Info("imported statement",
		"institution", institution,
		"file", filepath.Base(path),
		"transactions", len(res.Transactions),
		"skipped", len(res.Skipped))
	return res, nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&BankOfAmericaParser{})
	r.Register(&WellsFargoParser{})
	r.Register(&AmericanExpressParser{})
	r.Register(&ChaseParser{})
	return r
}

// ImportTransactions parses path with the built-in parser for institution.
func ImportTransactions(path, institution string) ([]model.TransactionImport, error) {
	res, err := DefaultRegistry().Import(path, institution)
	if err != nil {
		return nil, err
	}
	return res.Transactions, nil
}

// importDir is the subdirectory for statements waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported statements.
const processedDir = "import/processed"

// Scan returns statement files (.csv, .txt) in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".csv" && ext != ".txt" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
