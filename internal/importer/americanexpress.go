package importer

import "io"

// AmericanExpressParser parses American Express card activity CSV exports.
//
// Columns after the "Date" header row are date, description, two unused columns
// and amount. Charges are reported as positive and credits as negative, so every
// amount is negated to match the money-out-is-negative convention.
type AmericanExpressParser struct{}

var americanExpressLayout = csvLayout{
	sentinel:  "Date",
	numFields: 5,
	colDate:   0,
	colName:   1,
	colAmount: 4,
	negate:    true,
}

// Institution returns the dispatch name.
func (p *AmericanExpressParser) Institution() string { return "American Express" }

// Parse reads an American Express CSV and returns its transactions.
func (p *AmericanExpressParser) Parse(r io.Reader) (Result, error) {
	return americanExpressLayout.parse(r)
}
