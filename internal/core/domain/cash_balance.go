package domain

import "github.com/shopspring/decimal"

// CashBalanceSummary is the derived cash register position. It is never
// stored; every read recomputes it from contributions and transactions.
type CashBalanceSummary struct {
	TotalBalance       decimal.Decimal `json:"total_balance"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalManualIncome  decimal.Decimal `json:"total_manual_income"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
}

// SummarizeCash reduces contributions and transactions into a summary.
// Only paid contributions count.
func SummarizeCash(contributions []Contribution, transactions []Transaction) CashBalanceSummary {
	s := CashBalanceSummary{
		TotalContributions: decimal.Zero,
		TotalManualIncome:  decimal.Zero,
		TotalExpenses:      decimal.Zero,
	}

	for _, c := range contributions {
		if c.Status != ContributionStatusPaid {
			continue
		}
		s.TotalContributions = s.TotalContributions.Add(c.Amount)
	}

	for _, t := range transactions {
		switch t.Type {
		case TransactionTypeIncome:
			s.TotalManualIncome = s.TotalManualIncome.Add(t.Amount)
		case TransactionTypeExpense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
		}
	}

	s.TotalBalance = s.TotalContributions.Add(s.TotalManualIncome).Sub(s.TotalExpenses)
	return s
}
