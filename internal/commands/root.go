package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankimport/internal/buildinfo"
	"github.com/cleared-dev/bankimport/internal/catalog"
	"github.com/cleared-dev/bankimport/internal/config"
	"github.com/cleared-dev/bankimport/internal/importer"
	"github.com/cleared-dev/bankimport/internal/store"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	dir      string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "bankimport",
		Short:   "Import bank statement exports into a local ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides the config")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newInstitutionsCommand(),
		newImportCommand(opts),
		newBatchCommand(opts),
		newTransactionsCommand(opts),
		newCategoriesCommand(opts),
		newAccountsCommand(opts),
	)

	return rootCmd
}

// project is a loaded project directory: its config and a logger at the configured level.
type project struct {
	dir    string
	cfg    *config.Config
	logger *log.Logger
}

// openProject loads <dir>/bankimport.yaml. A directory without one runs on defaults.
func openProject(cmd *cobra.Command, opts *options) (*project, error) {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
		cfg.ApplyEnv(dir)
	} else if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, err
	}

	return &project{dir: dir, cfg: cfg, logger: logger}, nil
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "bankimport",
		Level:           lvl,
	}), nil
}

func (p *project) registry() *importer.Registry {
	return importer.DefaultRegistry().WithLogger(p.logger)
}

func (p *project) databasePath() string {
	return p.cfg.DatabasePath(p.dir)
}

// ledger is an open database with the catalog cached over it.
type ledger struct {
	store   *store.Store
	catalog *catalog.Catalog
}

func (p *project) openLedger(ctx context.Context) (*ledger, error) {
	st, err := store.Open(ctx, p.databasePath())
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(st)
	if err != nil {
		st.Close()
		return nil, err
	}
	p.logger.Debug("opened database", "path", p.databasePath())
	return &ledger{store: st, catalog: cat}, nil
}

func (l *ledger) Close() error {
	l.catalog.Close()
	return l.store.Close()
}
