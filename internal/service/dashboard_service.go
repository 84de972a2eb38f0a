package service

import (
	"context"
	"encoding/json"
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
	minDashboardYear = 1900
	maxDashboardYear = 9999
)

// DashboardServiceImpl implements ports.DashboardService.
type DashboardServiceImpl struct {
	finance   ports.FinanceService
	cache     ports.DashboardCache
	tolerance decimal.Decimal
	ttl       time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(
	finance ports.FinanceService,
	cache ports.DashboardCache,
	tolerance decimal.Decimal,
	ttl time.Duration,
	log zerolog.Logger,
) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		finance:   finance,
		cache:     cache,
		tolerance: tolerance,
		ttl:       ttl,
		log:       log,
		now:       time.Now,
	}
}

// Load returns the reconciliation view for year. The cash and bank figures
// are recomputed on every call since contributions are written outside this
// service; only the year's transaction list may come from the cache.
func (s *DashboardServiceImpl) Load(ctx context.Context, year int) (*ports.DashboardView, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	var (
		cash         *domain.CashBalanceSummary
		bank         domain.BankBalanceReading
		transactions []domain.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cash, err = s.finance.CalculateCashBalance(gctx)
		return err
	})
	g.Go(func() error {
		bank = s.finance.GetLatestBankBalance(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		transactions, err = s.transactions(gctx, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec := domain.Reconcile(*cash, bank, s.tolerance)
	metrics.Reconciliations.WithLabelValues(string(rec.Status)).Inc()
	if rec.Alert {
		s.log.Warn().
			Int("year", year).
			Str("cash_balance", cash.TotalBalance.String()).
			Str("bank_balance", bank.Amount.String()).
			Str("difference", rec.Difference.String()).
			Msg("Cash and bank balances do not reconcile")
	}

	return &ports.DashboardView{
		Year:           year,
		Cash:           *cash,
		Bank:           bank,
		Reconciliation: rec,
		Transactions:   transactions,
		GeneratedAt:    s.now().UTC(),
	}, nil
}

// CreateTransaction records a transaction and drops every cached list.
func (s *DashboardServiceImpl) CreateTransaction(ctx context.Context, t domain.NewTransaction, actorID uuid.UUID) (*domain.Transaction, error) {
	created, err := s.finance.CreateTransaction(ctx, t, actorID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// DeleteTransaction deletes a transaction and reloads the view for year.
func (s *DashboardServiceImpl) DeleteTransaction(ctx context.Context, year int, id uuid.UUID, actorID uuid.UUID) (*ports.MutationResult, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if err := s.finance.DeleteTransaction(ctx, id, actorID); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.reload(ctx, year, &ports.MutationResult{}), nil
}

// UpdateBankBalance appends a bank snapshot and reloads the view for year.
func (s *DashboardServiceImpl) UpdateBankBalance(ctx context.Context, year int, amount decimal.Decimal, actorID uuid.UUID) (*ports.MutationResult, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	snapshot, err := s.finance.UpdateBankBalance(ctx, amount, actorID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.reload(ctx, year, &ports.MutationResult{Snapshot: snapshot}), nil
}

// reload fills res with the fresh view. The write is already committed, so a
// failed reload is reported on res instead of as an error.
func (s *DashboardServiceImpl) reload(ctx context.Context, year int, res *ports.MutationResult) *ports.MutationResult {
	view, err := s.Load(ctx, year)
	if err != nil {
		s.log.Warn().Err(err).Int("year", year).Msg("Dashboard reload after mutation failed")
		res.ReloadErr = err
		return res
	}
	res.View = view
	return res
}

func validateYear(year int) error {
	if year < minDashboardYear || year > maxDashboardYear {
		return apperror.Validation("", apperror.FieldError{
			Field:   "year",
			Message: fmt.Sprintf("must be between %d and %d", minDashboardYear, maxDashboardYear),
		})
	}
	return nil
}

// transactions returns the year's transactions, newest first. The cache
// generation is read before the list so a mutation landing in between
// keeps the stale list out of the cache.
func (s *DashboardServiceImpl) transactions(ctx context.Context, year int) ([]domain.Transaction, error) {
	gen, cacheable := s.generation(ctx)
	if cacheable {
		if list, ok := s.cached(ctx, year); ok {
			return list, nil
		}
	}

	start, end := domain.YearBounds(year)
	list, err := s.finance.ListTransactions(ctx, ports.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.store(ctx, year, gen, list)
	}
	return list, nil
}

func (s *DashboardServiceImpl) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Dashboard cache unavailable")
		return 0, false
	}
	return gen, true
}

func (s *DashboardServiceImpl) cached(ctx context.Context, year int) ([]domain.Transaction, bool) {
	data, err := s.cache.Get(ctx, year)
	if err != nil {
		s.log.Warn().Err(err).Int("year", year).Msg("Dashboard cache read failed")
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var list []domain.Transaction
	if err := json.Unmarshal(data, &list); err != nil {
		s.log.Warn().Err(err).Int("year", year).Msg("Discarding unreadable cached transactions")
		return nil, false
	}
	return list, true
}

func (s *DashboardServiceImpl) store(ctx context.Context, year int, gen int64, list []domain.Transaction) {
	data, err := json.Marshal(list)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to encode transactions for cache")
		return
	}
	stored, err := s.cache.Set(ctx, year, gen, data, s.ttl)
	if err != nil {
		s.log.Warn().Err(err).Int("year", year).Msg("Dashboard cache write failed")
		return
	}
	if !stored {
		s.log.Debug().Int("year", year).Msg("Skipped caching transactions invalidated during load")
	}
}

func (s *DashboardServiceImpl) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Dashboard cache invalidation failed")
	}
}
