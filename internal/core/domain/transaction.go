package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of a transaction's calendar day.
const DateLayout = "2006-01-02"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Category is the bookkeeping bucket of a manual transaction.
type Category string

const (
	CategoryDonation      Category = "donation"
	CategoryReimbursement Category = "reimbursement"
	CategoryOtherIncome   Category = "other_income"

	CategoryLoan            Category = "loan"
	CategoryEventExpense    Category = "event_expense"
	CategoryProjectExpense  Category = "project_expense"
	CategoryPrefinancing    Category = "prefinancing"
	CategoryDonationExpense Category = "donation_expense"
	CategoryOtherExpense    Category = "other_expense"
)

var categoriesByType = map[TransactionType][]Category{
	TransactionTypeIncome: {
		CategoryDonation,
		CategoryReimbursement,
		CategoryOtherIncome,
	},
	TransactionTypeExpense: {
		CategoryLoan,
		CategoryEventExpense,
		CategoryProjectExpense,
		CategoryPrefinancing,
		CategoryDonationExpense,
		CategoryOtherExpense,
	},
}

// CategoriesFor returns the fixed category list of a transaction type.
// Unknown types have no categories.
func CategoriesFor(t TransactionType) []Category {
	cats := categoriesByType[t]
	out := make([]Category, len(cats))
	copy(out, cats)
	return out
}

// IsCategoryOf reports whether c belongs to the category list of t.
func IsCategoryOf(c Category, t TransactionType) bool {
	for _, known := range categoriesByType[t] {
		if known == c {
			return true
		}
	}
	return false
}

// Transaction is a manually recorded income or expense.
// Rows are never updated; corrections are a delete plus a new entry.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Recipient   string          `json:"recipient,omitempty"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewTransaction holds the validated fields of a transaction about to be
// inserted. The gateway assigns the timestamps.
type NewTransaction struct {
	Date        time.Time
	Amount      decimal.Decimal
	Type        TransactionType
	Category    Category
	Description string
	Recipient   string
}

// ParseDate parses a YYYY-MM-DD calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// YearBounds returns the first and last calendar day of year.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}
