// Package normalize turns statement text into exact decimals and calendar dates.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which field failed to normalize.
type Kind string

const (
	InvalidAmount Kind = "invalid_amount"
	InvalidDate   Kind = "invalid_date"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// ParseError reports raw text that could not be normalized.
type ParseError struct {
	Kind  Kind
	Input string
	Err   error // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s %q", strings.ReplaceAll(string(e.Kind), "_", " "), e.Input)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrInvalidAmount / ErrInvalidDate by kind.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrInvalidAmount:
		return e.Kind == InvalidAmount
	case ErrInvalidDate:
		return e.Kind == InvalidDate
	}
	return false
}

// DateLayout accepts one- or two-digit month and day and a four-digit year.
const DateLayout = "1/2/2006"

var amountPattern = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d+)?|\.\d+)$`)

// ParseAmount parses statement money text such as `"1,000.00"`, `-2.90` or ` +.5 `.
// Thousands separators and enclosing quotes are ignored; exponents are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(unquote(raw), ",", "")
	s = strings.TrimSpace(s)

	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, &ParseError{Kind: InvalidAmount, Input: raw}
	}

	num := m[2]
	if num[0] == '.' {
		num = "0" + num
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, &ParseError{Kind: InvalidAmount, Input: raw, Err: err}
	}
	if m[1] == "-" {
		d = d.Neg()
	}
	return d, nil
}

// ParseDate parses MM/DD/YYYY into a UTC-midnight date. Non-existent days such as 02/30 fail.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(unquote(raw))
	if len(s) < len("1/1/2006") || strings.Count(s, "/") != 2 {
		return time.Time{}, &ParseError{Kind: InvalidDate, Input: raw}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ParseError{Kind: InvalidDate, Input: raw, Err: err}
	}
	return t, nil
}

// unquote trims whitespace and one pair of matching enclosing quotes.
func unquote(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}
