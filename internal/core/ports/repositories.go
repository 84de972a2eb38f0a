package ports

import (
	"context"
	"time"

	"member-finance/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// TransactionRepository is the gateway to the financial_transactions table.
type TransactionRepository interface {
	// Create inserts a transaction stamped with createdBy and returns the
	// stored row, timestamps included.
	Create(ctx context.Context, t *domain.NewTransaction, createdBy uuid.UUID) (*domain.Transaction, error)
	// Delete removes a transaction. Deleting a missing id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns matching transactions ordered by date, newest first.
	List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
}

// TransactionFilter narrows ListTransactions. Nil fields impose no
// constraint; set fields are AND-ed. Date bounds are inclusive.
type TransactionFilter struct {
	Type      *domain.TransactionType
	Category  *domain.Category
	StartDate *time.Time
	EndDate   *time.Time
}

// BankBalanceRepository is the gateway to the append-only
// bank_balance_updates table.
type BankBalanceRepository interface {
	Append(ctx context.Context, s *domain.BankBalanceSnapshot) error
	// Latest returns the snapshot with the greatest updated_at, or nil, nil
	// when there is none.
	Latest(ctx context.Context) (*domain.BankBalanceSnapshot, error)
	// History returns up to limit snapshots, newest first.
	History(ctx context.Context, limit int) ([]domain.BankBalanceSnapshot, error)
}

// ContributionRepository reads membership contributions.
type ContributionRepository interface {
	ListPaid(ctx context.Context) ([]domain.Contribution, error)
}

// MemberRepository reads the profiles table.
type MemberRepository interface {
	List(ctx context.Context) (domain.MemberDirectory, error)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error
}
