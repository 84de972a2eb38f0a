package ports

import (
	"context"
	"time"

	"member-finance/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// FinanceService is the aggregation layer over the finance tables.
//
// Reads of the bank balance never fail: a gateway error degrades to an
// unknown reading. Every other operation propagates gateway failures as
// QRY_001 errors.
type FinanceService interface {
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, t domain.NewTransaction, actorID uuid.UUID) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	GetLatestBankBalance(ctx context.Context) domain.BankBalanceReading
	UpdateBankBalance(ctx context.Context, amount decimal.Decimal, actorID uuid.UUID) (*domain.BankBalanceSnapshot, error)
	BankBalanceHistory(ctx context.Context, limit int) ([]domain.BankBalanceSnapshot, error)
	CalculateCashBalance(ctx context.Context) (*domain.CashBalanceSummary, error)
}

// TransactionCreator is what the entry form submits to.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, t domain.NewTransaction, actorID uuid.UUID) (*domain.Transaction, error)
}

// DashboardService composes the reconciliation view for one year.
// Mutations go through it so the view is reloaded afterwards. A mutation
// only returns an error when the write itself failed.
type DashboardService interface {
	Load(ctx context.Context, year int) (*DashboardView, error)
	CreateTransaction(ctx context.Context, t domain.NewTransaction, actorID uuid.UUID) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, year int, id uuid.UUID, actorID uuid.UUID) (*MutationResult, error)
	UpdateBankBalance(ctx context.Context, year int, amount decimal.Decimal, actorID uuid.UUID) (*MutationResult, error)
}

// MutationResult is a committed mutation plus the dashboard reloaded after
// it. When the reload fails View is nil and ReloadErr says why; the write
// still stands.
type MutationResult struct {
	Snapshot  *domain.BankBalanceSnapshot
	View      *DashboardView
	ReloadErr error
}

// DashboardView is the reconciliation dashboard for one calendar year.
type DashboardView struct {
	Year           int                       `json:"year"`
	Cash           domain.CashBalanceSummary `json:"cash"`
	Bank           domain.BankBalanceReading `json:"bank"`
	Reconciliation domain.Reconciliation     `json:"reconciliation"`
	Transactions   []domain.Transaction      `json:"transactions"`
	GeneratedAt    time.Time                 `json:"generated_at"`
}

// AuditService records audit events. Log never blocks and never fails the
// caller; persistence problems are only logged.
type AuditService interface {
	Log(ctx context.Context, event *domain.AuditEvent)
}

// AuditPublisher forwards audit events to a message broker.
type AuditPublisher interface {
	Publish(ctx context.Context, event *domain.AuditEvent) error
}

// DashboardCache stores the serialized year-bounded transaction list of the
// dashboard. Writes are fenced by a generation counter that InvalidateAll
// bumps, so a list read before a mutation is never stored after it.
type DashboardCache interface {
	// Generation returns the current generation to pass to Set.
	Generation(ctx context.Context) (int64, error)
	// Get returns the cached value, or nil when the key does not exist.
	Get(ctx context.Context, year int) ([]byte, error)
	// Set stores value only while the generation is still gen and reports
	// whether it did.
	Set(ctx context.Context, year int, gen int64, value []byte, ttl time.Duration) (bool, error)
	// InvalidateAll bumps the generation and drops every cached year.
	InvalidateAll(ctx context.Context) error
}

// TokenService handles the bearer tokens that identify the acting member.
type TokenService interface {
	Generate(actorID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	ActorID uuid.UUID
}
