package importer

import "io"

// WellsFargoParser parses Wells Fargo checking CSV exports.
// The file has no header: date, amount, two unused columns, description.
type WellsFargoParser struct{}

var wellsFargoLayout = csvLayout{
	numFields:   5,
	exactFields: true,
	colDate:     0,
	colAmount:   1,
	colName:     4,
}

// Institution returns the dispatch name.
func (p *WellsFargoParser) Institution() string { return "Wells Fargo" }

// Parse reads a Wells Fargo CSV and returns its transactions.
func (p *WellsFargoParser) Parse(r io.Reader) (Result, error) {
	return wellsFargoLayout.parse(r)
}
