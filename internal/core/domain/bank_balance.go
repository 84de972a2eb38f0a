package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankBalanceLimit is the exclusive bound on the absolute value of a
// snapshot amount; bank_balance_updates.amount is NUMERIC(14,2).
var BankBalanceLimit = decimal.New(1, 12)

// ValidBankAmount reports whether amount can be stored as a snapshot.
func ValidBankAmount(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(BankBalanceLimit)
}

// BankBalanceSnapshot is a point-in-time assertion of the bank account
// balance. Snapshots are append-only; the latest updated_at wins.
type BankBalanceSnapshot struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy uuid.UUID       `json:"updated_by"`
}

// BankBalanceReading is the result of reading the current bank balance.
// Known is false when the read failed; Amount is then zero and Reason says
// why, so a failed read is never mistaken for a real zero balance.
type BankBalanceReading struct {
	Known     bool                 `json:"known"`
	Amount    decimal.Decimal      `json:"amount"`
	UpdatedAt *time.Time           `json:"updated_at"`
	Snapshot  *BankBalanceSnapshot `json:"snapshot,omitempty"`
	Reason    string               `json:"reason,omitempty"`
}

// KnownBankBalance builds a reading from the latest snapshot.
// A nil snapshot means no snapshot exists yet: amount 0, no timestamp.
func KnownBankBalance(s *BankBalanceSnapshot) BankBalanceReading {
	if s == nil {
		return BankBalanceReading{Known: true, Amount: decimal.Zero}
	}
	updatedAt := s.UpdatedAt
	return BankBalanceReading{
		Known:     true,
		Amount:    s.Amount,
		UpdatedAt: &updatedAt,
		Snapshot:  s,
	}
}

// UnknownBankBalance builds the degraded reading returned when the
// snapshot fetch failed.
func UnknownBankBalance(reason string) BankBalanceReading {
	return BankBalanceReading{
		Known:  false,
		Amount: decimal.Zero,
		Reason: reason,
	}
}
