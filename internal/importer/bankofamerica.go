package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// BankOfAmericaParser parses Bank of America fixed-width text statements.
//
// The export opens with a balance summary. Transactions follow a "Date" header line
// and a "Beginning balance" line; columns are separated by runs of two or more spaces.
type BankOfAmericaParser struct{}

const (
	boaHeaderStart = "Date"
	boaBoilerplate = 1 // beginning balance line after the header
	boaMinFields   = 3 // date, description, amount, optional running balance
	boaColDate     = 0
	boaColDesc     = 1
	boaColAmount   = 2
	boaMaxLine     = 1 << 20
)

// Institution returns the dispatch name.
func (p *BankOfAmericaParser) Institution() string { return "Bank Of America" }

// Parse reads a Bank of America statement and returns its transactions.
func (p *BankOfAmericaParser) Parse(r io.Reader) (Result, error) {
	sc := bufio.NewScanner(skipBOM(r))
	sc.Buffer(make([]byte, 0, 64*1024), boaMaxLine)

	header := newHeaderSkipper(boaHeaderStart, boaBoilerplate)
	var res Result
	for lineNo := 1; sc.Scan(); lineNo++ {
		fields := splitFixedWidth(strings.TrimRight(sc.Text(), "\r"))
		if len(fields) == 0 || !header.isData(fields[0]) {
			continue
		}

		if len(fields) < boaMinFields {
			res.skip(lineNo, fmt.Errorf("expected at least %d columns, got %d", boaMinFields, len(fields)))
			continue
		}
		txn, err := buildRecord(fields[boaColDate], fields[boaColDesc], fields[boaColAmount], false)
		if err != nil {
			res.skip(lineNo, err)
			continue
		}
		res.Transactions = append(res.Transactions, txn)
	}
	if err := sc.Err(); err != nil {
		return Result{}, ioError(fmt.Errorf("reading bank of america statement: %w", err))
	}
	return res, nil
}
