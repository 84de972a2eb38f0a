package service

import (
	"context"
	"fmt"
	"time"

	"member-finance/internal/core/domain"
	"member-finance/internal/core/ports"
	"member-finance/internal/metrics"
	"member-finance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// FinanceServiceImpl implements ports.FinanceService.
type FinanceServiceImpl struct {
	txRepo      ports.TransactionRepository
	bankRepo    ports.BankBalanceRepository
	contribRepo ports.ContributionRepository
	audit       ports.AuditService
	log         zerolog.Logger
}

// NewFinanceService creates a new finance service.
func NewFinanceService(
	txRepo ports.TransactionRepository,
	bankRepo ports.BankBalanceRepository,
	contribRepo ports.ContributionRepository,
	audit ports.AuditService,
	log zerolog.Logger,
) *FinanceServiceImpl {
	return &FinanceServiceImpl{
		txRepo:      txRepo,
		bankRepo:    bankRepo,
		contribRepo: contribRepo,
		audit:       audit,
		log:         log,
	}
}

// ListTransactions returns the transactions matching filter, newest first.
func (s *FinanceServiceImpl) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	txns, err := s.txRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.QueryError(err)
	}
	return txns, nil
}

// CreateTransaction persists t on behalf of actorID and audits it.
func (s *FinanceServiceImpl) CreateTransaction(ctx context.Context, t domain.NewTransaction, actorID uuid.UUID) (*domain.Transaction, error) {
	created, err := s.txRepo.Create(ctx, &t, actorID)
	if err != nil {
		return nil, apperror.QueryError(err)
	}

	metrics.TransactionsCreated.WithLabelValues(string(created.Type)).Inc()
	s.audit.Log(ctx, domain.NewAuditEvent(domain.AuditTransactionCreated, actorID, created.ID, map[string]interface{}{
		"type":     string(created.Type),
		"amount":   created.Amount.String(),
		"category": string(created.Category),
	}))

	s.log.Info().
		Str("transaction_id", created.ID.String()).
		Str("type", string(created.Type)).
		Str("amount", created.Amount.String()).
		Msg("Transaction recorded")

	return created, nil
}

// DeleteTransaction removes the transaction with id. Missing ids are not
// reported.
func (s *FinanceServiceImpl) DeleteTransaction(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if err := s.txRepo.Delete(ctx, id); err != nil {
		return apperror.QueryError(err)
	}

	metrics.TransactionsDeleted.Inc()
	s.audit.Log(ctx, domain.NewAuditEvent(domain.AuditTransactionDeleted, actorID, id, nil))

	s.log.Info().Str("transaction_id", id.String()).Msg("Transaction deleted")
	return nil
}

// GetLatestBankBalance returns the newest bank balance snapshot. It never
// fails; a gateway error yields an unknown reading.
func (s *FinanceServiceImpl) GetLatestBankBalance(ctx context.Context) domain.BankBalanceReading {
	snapshot, err := s.bankRepo.Latest(ctx)
	if err != nil {
		metrics.BankBalanceReadFailures.Inc()
		s.log.Warn().Err(err).Msg("Bank balance read failed, reporting unknown balance")
		return domain.UnknownBankBalance(err.Error())
	}
	return domain.KnownBankBalance(snapshot)
}

// ValidateBankAmount rejects amounts a snapshot cannot hold. Negative
// amounts are fine.
func ValidateBankAmount(amount decimal.Decimal) error {
	if domain.ValidBankAmount(amount) {
		return nil
	}
	return apperror.Validation("", apperror.FieldError{
		Field:   "amount",
		Message: fmt.Sprintf("must be between -%s and %s exclusive", domain.BankBalanceLimit, domain.BankBalanceLimit),
	})
}

// UpdateBankBalance appends a new bank balance snapshot.
func (s *FinanceServiceImpl) UpdateBankBalance(ctx context.Context, amount decimal.Decimal, actorID uuid.UUID) (*domain.BankBalanceSnapshot, error) {
	if err := ValidateBankAmount(amount); err != nil {
		return nil, err
	}

	snapshot := &domain.BankBalanceSnapshot{
		ID:        uuid.New(),
		Amount:    amount,
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: actorID,
	}

	if err := s.bankRepo.Append(ctx, snapshot); err != nil {
		return nil, apperror.QueryError(err)
	}

	metrics.BankBalanceUpdates.Inc()
	s.audit.Log(ctx, domain.NewAuditEvent(domain.AuditBankBalanceUpdated, actorID, snapshot.ID, map[string]interface{}{
		"amount": amount.String(),
	}))

	s.log.Info().
		Str("snapshot_id", snapshot.ID.String()).
		Str("amount", amount.String()).
		Msg("Bank balance updated")

	return snapshot, nil
}

// BankBalanceHistory returns recent snapshots, newest first.
func (s *FinanceServiceImpl) BankBalanceHistory(ctx context.Context, limit int) ([]domain.BankBalanceSnapshot, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	snapshots, err := s.bankRepo.History(ctx, limit)
	if err != nil {
		return nil, apperror.QueryError(err)
	}
	return snapshots, nil
}

// CalculateCashBalance recomputes the cash position from paid
// contributions and every manual transaction.
func (s *FinanceServiceImpl) CalculateCashBalance(ctx context.Context) (*domain.CashBalanceSummary, error) {
	var (
		contributions []domain.Contribution
		transactions  []domain.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contributions, err = s.contribRepo.ListPaid(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.txRepo.List(gctx, ports.TransactionFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.QueryError(err)
	}

	summary := domain.SummarizeCash(contributions, transactions)
	return &summary, nil
}
