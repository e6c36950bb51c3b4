package importer

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankimport/internal/model"
)

func TestBankOfAmericaParser_Parse(t *testing.T) {
	f, err := os.Open("../../testdata/bankofamerica.txt")
	require.NoError(t, err)
	defer f.Close()

	res, err := (&BankOfAmericaParser{}).Parse(f)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)

	assertTransactions(t, []model.TransactionImport{
		txn(date(2025, 10, 20), "MTA*NYCT PAYGO 10/17 MOBILE PURCHASE NEW YORK NY", "-2.90"),
		txn(date(2025, 10, 20), "MTA*NYCT PAYGO 10/17 MOBILE PURCHASE NEW YORK NY", "-2.90"),
		txn(date(2025, 10, 20), "PAYPAL *NJ TRANSIT 10/17 PURCHASE 123-456-7890 NJ", "-5.30"),
		txn(date(2025, 10, 22), "VENMO DES:PAYMENT ID:XXXXX INDN:John Doe CO ID:XXXXX WEB", "-15.00"),
		txn(date(2025, 11, 3), "Online Recurring transfer from CHK 1111 Confirmation# xxxxxxx; DOE, JANE", "1000.00"),
	}, res.Transactions)
}

func TestBankOfAmericaParser_HeaderSkip(t *testing.T) {
	// Summary block mentions dates and amounts but must never be read as transactions.
	statement := strings.Join([]string{
		"Description                         Summary Amt.",
		"Beginning balance as of 01/01/2025      100.00",
		"01/31/2025  Looks like a row          -1.00  99.00",
		"",
		"Date        Description               Amount  Running Bal.",
		"01/01/2025  Beginning balance as of 01/01/2025     100.00",
		"01/02/2025  COFFEE                    -3.00   97.00",
		"01/03/2025  PAYCHECK                  500.00  597.00",
		"",
	}, "\n")

	res, err := (&BankOfAmericaParser{}).Parse(strings.NewReader(statement))
	require.NoError(t, err)
	assertTransactions(t, []model.TransactionImport{
		txn(date(2025, 1, 2), "COFFEE", "-3.00"),
		txn(date(2025, 1, 3), "PAYCHECK", "500.00"),
	}, res.Transactions)
}

func TestBankOfAmericaParser_CorruptLine(t *testing.T) {
	statement := strings.Join([]string{
		"Date        Description               Amount  Running Bal.",
		"01/01/2025  Beginning balance as of 01/01/2025     100.00",
		"01/02/2025  COFFEE                    -3.00   97.00",
		"01/0X/2025  GARBLED                   -1.00   96.00",
		"01/03/2025  BOOKS                     -12.50  83.50",
		"just one column",
		"01/04/2025  REFUND                    \"1,200.00\"  1,283.50",
	}, "\r\n")

	res, err := (&BankOfAmericaParser{}).Parse(strings.NewReader(statement))
	require.NoError(t, err)
	assertTransactions(t, []model.TransactionImport{
		txn(date(2025, 1, 2), "COFFEE", "-3.00"),
		txn(date(2025, 1, 3), "BOOKS", "-12.50"),
		txn(date(2025, 1, 4), "REFUND", "1200"),
	}, res.Transactions)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 4, res.Skipped[0].Line)
	assert.Equal(t, 6, res.Skipped[1].Line)
}

func TestBankOfAmericaParser_NoHeader(t *testing.T) {
	res, err := (&BankOfAmericaParser{}).Parse(strings.NewReader("01/02/2025  COFFEE  -3.00  97.00\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
}

func TestBankOfAmericaParser_SignPassesThrough(t *testing.T) {
	f, err := os.Open("../../testdata/bankofamerica.txt")
	require.NoError(t, err)
	defer f.Close()

	res, err := (&BankOfAmericaParser{}).Parse(f)
	require.NoError(t, err)
	for _, tx := range res.Transactions[:4] {
		assert.True(t, tx.Amount.IsNegative(), "expected negative for %s", tx.Name)
	}
	assert.True(t, res.Transactions[4].Amount.IsPositive())
}

func TestSplitFixedWidth(t *testing.T) {
	got := splitFixedWidth("10/20/2025  MTA*NYCT PAYGO 10/17  \t -2.90     1,231.66  ")
	assert.Equal(t, []string{"10/20/2025", "MTA*NYCT PAYGO 10/17", "-2.90", "1,231.66"}, got)
	assert.Nil(t, splitFixedWidth("   "))
}
