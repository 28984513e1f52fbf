// Package export renders read-only ledger snapshots into audit artifacts.
// It needs nothing beyond read access to the transaction set and settings.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
	"github.com/annuksk07-cloud/xpenseflow/internal/settings"
)

// csvHeader matches the audit report column set
var csvHeader = []string{
	"Date", "Title", "Category", "Amount (Base)", "Currency", "Type",
	"Payment Method", "Has Tax", "Tax Amount", "Created At",
}

// CSVFilename returns the audit report filename for a given day
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("xpenseflow_audit_%s.csv", now.Format("2006-01-02"))
}

// WriteCSV writes the transaction set as an audit CSV report
func WriteCSV(w io.Writer, transactions []ledger.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, tx := range transactions {
		payment := string(tx.PaymentMethod)
		if payment == "" {
			payment = "N/A"
		}
		hasTax := "No"
		if tx.HasTax {
			hasTax = "Yes"
		}

		row := []string{
			tx.Date.Format(time.RFC3339),
			tx.Title,
			tx.Category,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			string(tx.Currency),
			string(tx.Type),
			payment,
			hasTax,
			strconv.FormatFloat(tx.TaxAmount, 'f', -1, 64),
			tx.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Backup is a full portable copy of one identity's ledger state
type Backup struct {
	Settings      settings.Settings     `json:"settings"`
	Transactions  []ledger.Transaction  `json:"transactions"`
	Subscriptions []ledger.Subscription `json:"subscriptions"`
	Timestamp     time.Time             `json:"timestamp"`
}

// WriteBackup writes the backup document as indented JSON
func WriteBackup(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}
