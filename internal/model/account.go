package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a bank account.
type AccountType string

const (
	AccountTypeCheckings AccountType = "checkings"
	AccountTypeSavings   AccountType = "savings"
	AccountTypeCredit    AccountType = "credit"
)

// ParseAccountType validates s as an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case AccountTypeCheckings, AccountTypeSavings, AccountTypeCredit:
		return t, nil
	}
	return "", fmt.Errorf("unknown account type %q (want checkings, savings or credit)", s)
}

// Bank is a financial institution. Name doubles as the importer institution id.
type Bank struct {
	ID   int64
	Name string
}

// Account is a row in the account table, joined with its bank's name.
type Account struct {
	ID             int64
	Name           string
	BankID         int64
	BankName       string
	Type           AccountType
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
}

// Category groups transactions for budgeting.
type Category struct {
	ID             int64
	Name           string
	Color          string
	SecondaryColor string
	Icon           string
}

// Transaction is a persisted TransactionImport with its account and category.
type Transaction struct {
	ID         int64
	Name       string
	Amount     decimal.Decimal
	Date       time.Time
	AccountID  int64
	CategoryID int64
}
