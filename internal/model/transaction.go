package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the ISO-8601 calendar date layout used when records leave the importer.
const DateFormat = "2006-01-02"

// TransactionImport is one canonical statement row, independent of the institution it came from.
type TransactionImport struct {
	Date   time.Time       // calendar date at UTC midnight
	Name   string          // free-text description as printed on the statement
	Amount decimal.Decimal // negative = money out, positive = money in
}

// NewTransactionImport builds a record, dropping any time-of-day component from date.
func NewTransactionImport(date time.Time, name string, amount decimal.Decimal) TransactionImport {
	return TransactionImport{
		Date:   time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Name:   name,
		Amount: amount,
	}
}

// Negate returns a copy with the amount sign flipped.
func (t TransactionImport) Negate() TransactionImport {
	t.Amount = t.Amount.Neg()
	return t
}

// Equal reports whether two records hold the same date, name and amount value.
// 27.6 and 27.60 compare equal.
func (t TransactionImport) Equal(o TransactionImport) bool {
	return t.Date.Equal(o.Date) && t.Name == o.Name && t.Amount.Equal(o.Amount)
}

func (t TransactionImport) String() string {
	return fmt.Sprintf("%s %q %s", t.Date.Format(DateFormat), t.Name, t.Amount.String())
}

type transactionImportJSON struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// MarshalJSON encodes the date as YYYY-MM-DD and the amount as an exact decimal string.
func (t TransactionImport) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionImportJSON{
		Date:   t.Date.Format(DateFormat),
		Name:   t.Name,
		Amount: t.Amount.String(),
	})
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (t *TransactionImport) UnmarshalJSON(data []byte) error {
	var raw transactionImportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(DateFormat, raw.Date)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", raw.Date, err)
	}
	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", raw.Amount, err)
	}
	*t = NewTransactionImport(date, raw.Name, amount)
	return nil
}
