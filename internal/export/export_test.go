package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annuksk07-cloud/xpenseflow/internal/currency"
	"github.com/annuksk07-cloud/xpenseflow/internal/export"
	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
	"github.com/annuksk07-cloud/xpenseflow/internal/settings"
)

func TestCSVFilename(t *testing.T) {
	day := time.Date(2025, time.March, 7, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, "xpenseflow_audit_2025-03-07.csv", export.CSVFilename(day))
}

func TestWriteCSV(t *testing.T) {
	date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, time.March, 1, 10, 30, 0, 0, time.UTC)

	txs := []ledger.Transaction{
		{
			Title:         "Groceries",
			Amount:        42.5,
			Currency:      currency.USD,
			Type:          ledger.TypeExpense,
			Category:      "food",
			Date:          date,
			PaymentMethod: ledger.PaymentCard,
			HasTax:        true,
			TaxAmount:     3.4,
			CreatedAt:     created,
		},
		{
			Title:     "Salary",
			Amount:    3000,
			Currency:  currency.USD,
			Type:      ledger.TypeIncome,
			Category:  "work",
			Date:      date,
			CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, txs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"Date", "Title", "Category", "Amount (Base)", "Currency", "Type",
		"Payment Method", "Has Tax", "Tax Amount", "Created At",
	}, records[0])

	assert.Equal(t, "Groceries", records[1][1])
	assert.Equal(t, "42.50", records[1][3])
	assert.Equal(t, "CARD", records[1][6])
	assert.Equal(t, "Yes", records[1][7])
	assert.Equal(t, "3.4", records[1][8])

	// Missing payment method renders as N/A
	assert.Equal(t, "N/A", records[2][6])
	assert.Equal(t, "No", records[2][7])
}

func TestWriteCSV_EmptySet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteBackup(t *testing.T) {
	b := export.Backup{
		Settings:      settings.Default(),
		Transactions:  []ledger.Transaction{{ID: "tx-1", Title: "Coffee"}},
		Subscriptions: []ledger.Subscription{{ID: "sub-1", Name: "Streaming"}},
		Timestamp:     time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteBackup(&buf, b))

	var decoded export.Backup
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, b.Settings.BudgetLimit, decoded.Settings.BudgetLimit)
	require.Len(t, decoded.Transactions, 1)
	assert.Equal(t, "Coffee", decoded.Transactions[0].Title)
	require.Len(t, decoded.Subscriptions, 1)
	assert.Equal(t, "Streaming", decoded.Subscriptions[0].Name)

	// Indented output, not a single line
	assert.Contains(t, buf.String(), "\n  ")
}
