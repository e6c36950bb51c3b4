package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionImport_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	txn := NewTransactionImport(time.Date(2025, 12, 15, 23, 30, 0, 0, loc), "X", decimal.RequireFromString("-5.77"))

	assert.Equal(t, time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC), txn.Date)
}

func TestTransactionImport_MarshalJSON(t *testing.T) {
	txn := NewTransactionImport(
		time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		`SQ *ESPRESSO "HOUSE"`,
		decimal.RequireFromString("-5.77"),
	)

	data, err := json.Marshal(txn)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-12-15","name":"SQ *ESPRESSO \"HOUSE\"","amount":"-5.77"}`, string(data))

	var got TransactionImport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, txn.Equal(got), "got %s", got)
}

func TestTransactionImport_UnmarshalJSONBadDate(t *testing.T) {
	var got TransactionImport
	err := json.Unmarshal([]byte(`{"date":"12/15/2025","name":"x","amount":"1"}`), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
}

func TestTransactionImport_Negate(t *testing.T) {
	txn := NewTransactionImport(time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC), "UBERBV", decimal.RequireFromString("6.71"))

	neg := txn.Negate()
	assert.Equal(t, "-6.71", neg.Amount.String())
	assert.Equal(t, "6.71", txn.Amount.String(), "receiver is unchanged")
}

func TestTransactionImport_EqualIgnoresTrailingZeros(t *testing.T) {
	d := time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)
	a := NewTransactionImport(d, "AMEX Airline Fee Reimbursement", decimal.RequireFromString("27.6"))
	b := NewTransactionImport(d, "AMEX Airline Fee Reimbursement", decimal.RequireFromString("27.60"))
	assert.True(t, a.Equal(b))
}
