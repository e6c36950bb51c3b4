// Package money converts exact decimal amounts to and from integer minor units (cents)
// for storage. It is the only place amounts leave decimal form.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitExp is the number of decimal places one minor unit represents (cents).
const MinorUnitExp = 2

// ErrOverflow is returned when an amount has sub-cent digits or does not fit in an int64.
var ErrOverflow = errors.New("amount does not fit in minor units")

// ArithmeticError reports an amount that could not be converted to minor units.
type ArithmeticError struct {
	Amount decimal.Decimal
	Reason string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("encoding %s as cents: %s", e.Amount.String(), e.Reason)
}

func (e *ArithmeticError) Unwrap() error { return ErrOverflow }

// Encode returns amount as a count of cents. It never rounds or truncates.
func Encode(amount decimal.Decimal) (int64, error) {
	scaled := amount.Shift(MinorUnitExp)
	if !scaled.IsInteger() {
		return 0, &ArithmeticError{Amount: amount, Reason: "sub-cent precision"}
	}
	n := scaled.BigInt()
	if !n.IsInt64() {
		return 0, &ArithmeticError{Amount: amount, Reason: "out of int64 range"}
	}
	return n.Int64(), nil
}

// Decode returns the exact decimal value of units cents.
func Decode(units int64) decimal.Decimal {
	return decimal.New(units, -MinorUnitExp)
}

// Cents is a decimal amount persisted as an INTEGER column of minor units.
type Cents struct {
	decimal.Decimal
}

// NewCents wraps d.
func NewCents(d decimal.Decimal) Cents {
	return Cents{Decimal: d}
}

// Value implements driver.Valuer.
func (c Cents) Value() (driver.Value, error) {
	return Encode(c.Decimal)
}

// Scan implements sql.Scanner for INTEGER columns.
func (c *Cents) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		c.Decimal = Decode(v)
		return nil
	case nil:
		return fmt.Errorf("scanning cents: NULL value")
	default:
		return fmt.Errorf("scanning cents: unsupported type %T", src)
	}
}
