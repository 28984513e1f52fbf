package stats

import (
	"time"

	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
	"github.com/annuksk07-cloud/xpenseflow/internal/settings"
)

// Stats holds the derived metrics over a transaction set. All amounts are
// denominated in the base currency the transactions were recorded in.
type Stats struct {
	TotalBalance           float64 `json:"totalBalance"`
	TotalIncome            float64 `json:"totalIncome"`
	TotalExpense           float64 `json:"totalExpense"`
	TotalTax               float64 `json:"totalTax"`
	BurnRate               float64 `json:"burnRate"`
	ProjectedSpend         float64 `json:"projectedSpend"`
	BudgetUsagePercent     float64 `json:"budgetUsagePercent"`
	SavingsProgressPercent float64 `json:"savingsProgressPercent"`
}

// Compute derives the full metric set from a transaction snapshot. It is a
// pure function of its inputs and safe to call on every reconciliation.
func Compute(transactions []ledger.Transaction, s settings.Settings, now time.Time) Stats {
	var out Stats

	for _, tx := range transactions {
		switch tx.Type {
		case ledger.TypeIncome:
			out.TotalIncome += tx.Amount
		case ledger.TypeExpense:
			out.TotalExpense += tx.Amount
			if tx.HasTax && tx.TaxAmount > 0 {
				out.TotalTax += tx.TaxAmount
			}
		}
	}
	out.TotalBalance = out.TotalIncome - out.TotalExpense

	// Burn rate: expenses of the current calendar month averaged over the
	// elapsed days, projected to month end.
	var monthExpense float64
	for _, tx := range transactions {
		if tx.Type != ledger.TypeExpense {
			continue
		}
		if tx.Date.Year() == now.Year() && tx.Date.Month() == now.Month() {
			monthExpense += tx.Amount
		}
	}
	dayOfMonth := now.Day()
	if dayOfMonth > 0 {
		out.BurnRate = monthExpense / float64(dayOfMonth)
	}
	out.ProjectedSpend = out.BurnRate * float64(daysInMonth(now))

	if s.BudgetLimit > 0 {
		out.BudgetUsagePercent = out.TotalExpense / s.BudgetLimit * 100
		if out.BudgetUsagePercent > 100 {
			out.BudgetUsagePercent = 100
		}
	}

	if s.SavingsGoal > 0 {
		out.SavingsProgressPercent = out.TotalBalance / s.SavingsGoal * 100
		if out.SavingsProgressPercent > 100 {
			out.SavingsProgressPercent = 100
		}
		if out.SavingsProgressPercent < 0 {
			out.SavingsProgressPercent = 0
		}
	}

	return out
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
