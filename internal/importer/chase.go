package importer

import "io"

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

var chaseLayout = csvLayout{
	sentinel:  "Details",
	numFields: 7, // Details, Posting Date, Description, Amount, Type, Balance, Check or Slip #
	colDate:   1,
	colName:   2,
	colAmount: 3,
}

// Institution returns the dispatch name.
func (p *ChaseParser) Institution() string { return "Chase" }

// Parse reads a Chase CSV and returns its transactions.
func (p *ChaseParser) Parse(r io.Reader) (Result, error) {
	return chaseLayout.parse(r)
}
