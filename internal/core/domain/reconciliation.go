package domain

import "github.com/shopspring/decimal"

// ReconciliationStatus is the outcome of comparing cash to bank.
type ReconciliationStatus string

const (
	ReconciliationMatch    ReconciliationStatus = "match"
	ReconciliationMismatch ReconciliationStatus = "mismatch"
	// ReconciliationUnknown is used when the bank balance could not be read.
	ReconciliationUnknown ReconciliationStatus = "unknown"
)

// DefaultTolerance is the width of the match band in currency minor units.
var DefaultTolerance = decimal.NewFromInt(100)

// Reconciliation is the cash-vs-bank comparison shown on the dashboard.
type Reconciliation struct {
	Difference decimal.Decimal      `json:"difference"`
	Status     ReconciliationStatus `json:"status"`
	Alert      bool                 `json:"alert"`
}

// Reconcile compares the cash total with the bank reading.
// |cash - bank| < tolerance is a match; the bound itself is a mismatch.
func Reconcile(cash CashBalanceSummary, bank BankBalanceReading, tolerance decimal.Decimal) Reconciliation {
	diff := cash.TotalBalance.Sub(bank.Amount)

	if !bank.Known {
		return Reconciliation{Difference: diff, Status: ReconciliationUnknown}
	}
	if diff.Abs().LessThan(tolerance) {
		return Reconciliation{Difference: diff, Status: ReconciliationMatch}
	}
	return Reconciliation{Difference: diff, Status: ReconciliationMismatch, Alert: true}
}
