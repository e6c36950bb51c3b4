package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/cleared-dev/bankimport/internal/model"
	"github.com/cleared-dev/bankimport/internal/normalize"
)

const byteOrderMark = "\ufeff"

// skipBOM drops a leading UTF-8 byte-order mark, which spreadsheet exports often carry.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(byteOrderMark)); err == nil && string(b) == byteOrderMark {
		_, _ = br.Discard(len(byteOrderMark))
	}
	return br
}

// columnGap separates fixed-width columns. Single spaces belong to descriptions.
var columnGap = regexp.MustCompile(` {2,}|\t+`)

// splitFixedWidth returns the non-empty trimmed columns of a fixed-width line.
func splitFixedWidth(line string) []string {
	var fields []string
	for _, part := range columnGap.Split(line, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

// headerSkipper hides everything up to and including a sentinel header row and
// a fixed number of boilerplate rows after it.
type headerSkipper struct {
	sentinel  string
	remaining int
	seen      bool
}

func newHeaderSkipper(sentinel string, boilerplate int) *headerSkipper {
	return &headerSkipper{sentinel: sentinel, remaining: boilerplate}
}

// isData reports whether a row whose first field is first comes after the header block.
func (h *headerSkipper) isData(first string) bool {
	if h.sentinel == "" {
		return true
	}
	if !h.seen {
		h.seen = strings.TrimSpace(first) == h.sentinel
		return false
	}
	if h.remaining > 0 {
		h.remaining--
		return false
	}
	return true
}

// buildRecord normalizes one row's date and amount text.
func buildRecord(date, name, amount string, negate bool) (model.TransactionImport, error) {
	d, err := normalize.ParseDate(date)
	if err != nil {
		return model.TransactionImport{}, err
	}
	a, err := normalize.ParseAmount(amount)
	if err != nil {
		return model.TransactionImport{}, err
	}
	txn := model.NewTransactionImport(d, strings.TrimSpace(name), a)
	if negate {
		txn = txn.Negate()
	}
	return txn, nil
}

// csvLayout describes where one institution's CSV export keeps its columns.
type csvLayout struct {
	sentinel    string // first field of the header row; empty when the export has no header
	boilerplate int    // rows to skip after the header
	numFields   int
	exactFields bool // rows must have exactly numFields columns, not just at least
	colDate     int
	colName     int
	colAmount   int
	negate      bool // export reports charges as positive
}

func (l csvLayout) parse(r io.Reader) (Result, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header := newHeaderSkipper(l.sentinel, l.boilerplate)
	var res Result
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.skip(perr.Line, err)
				continue
			}
			return Result{}, ioError(err)
		}
		if isBlank(rec) || !header.isData(rec[0]) {
			continue
		}
		line, _ := cr.FieldPos(0)

		if len(rec) < l.numFields || (l.exactFields && len(rec) != l.numFields) {
			res.skip(line, fmt.Errorf("expected %d fields, got %d", l.numFields, len(rec)))
			continue
		}
		txn, err := buildRecord(rec[l.colDate], rec[l.colName], rec[l.colAmount], l.negate)
		if err != nil {
			res.skip(line, err)
			continue
		}
		res.Transactions = append(res.Transactions, txn)
	}
	return res, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
