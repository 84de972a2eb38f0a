package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContributionStatus is the payment state of a membership contribution.
type ContributionStatus string

const (
	ContributionStatusPaid    ContributionStatus = "paid"
	ContributionStatusPending ContributionStatus = "pending"
)

// Contribution is a member's dues record. It is owned by the membership
// module and only read here.
type Contribution struct {
	ID       uuid.UUID          `json:"id"`
	MemberID uuid.UUID          `json:"member_id"`
	Amount   decimal.Decimal    `json:"amount"`
	Status   ContributionStatus `json:"status"`
}
