package integration

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"member-finance/internal/core/domain"
	"member-finance/internal/core/ports"

	"github.com/google/uuid"
)

var errGatewayDown = errors.New("gateway unavailable")

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu  sync.RWMutex
	txs map[uuid.UUID]domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{txs: make(map[uuid.UUID]domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.NewTransaction, createdBy uuid.UUID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := domain.Transaction{
		ID:          uuid.New(),
		Date:        t.Date,
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Description: t.Description,
		Recipient:   t.Recipient,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.txs[stored.ID] = stored
	return &stored, nil
}

func (r *inMemoryTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.txs, id)
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, f ports.TransactionFilter) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		if f.Type != nil && t.Type != *f.Type {
			continue
		}
		if f.Category != nil && t.Category != *f.Category {
			continue
		}
		if f.StartDate != nil && t.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && t.Date.After(*f.EndDate) {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *inMemoryTransactionRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.txs)
}

// --- In-Memory Bank Balance Repo ---

type inMemoryBankBalanceRepo struct {
	mu        sync.RWMutex
	snapshots []domain.BankBalanceSnapshot
	failReads bool
}

func newInMemoryBankBalanceRepo() *inMemoryBankBalanceRepo {
	return &inMemoryBankBalanceRepo{}
}

func (r *inMemoryBankBalanceRepo) Append(ctx context.Context, s *domain.BankBalanceSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, *s)
	return nil
}

func (r *inMemoryBankBalanceRepo) Latest(ctx context.Context) (*domain.BankBalanceSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.failReads {
		return nil, errGatewayDown
	}

	var latest *domain.BankBalanceSnapshot
	for i := range r.snapshots {
		s := r.snapshots[i]
		if latest == nil || !s.UpdatedAt.Before(latest.UpdatedAt) {
			latest = &s
		}
	}
	return latest, nil
}

func (r *inMemoryBankBalanceRepo) History(ctx context.Context, limit int) ([]domain.BankBalanceSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.BankBalanceSnapshot, len(r.snapshots))
	copy(out, r.snapshots)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryBankBalanceRepo) setFailReads(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failReads = fail
}

func (r *inMemoryBankBalanceRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshots)
}

// --- In-Memory Contribution Repo ---

type inMemoryContributionRepo struct {
	mu            sync.RWMutex
	contributions []domain.Contribution
}

func (r *inMemoryContributionRepo) ListPaid(ctx context.Context) ([]domain.Contribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Contribution, 0, len(r.contributions))
	for _, c := range r.contributions {
		if c.Status == domain.ContributionStatusPaid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *inMemoryContributionRepo) add(c domain.Contribution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contributions = append(r.contributions, c)
}

// --- In-Memory Member Repo ---

type inMemoryMemberRepo struct {
	members domain.MemberDirectory
}

func (r *inMemoryMemberRepo) List(ctx context.Context) (domain.MemberDirectory, error) {
	out := make(domain.MemberDirectory, len(r.members))
	copy(out, r.members)
	return out, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	fail   bool
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errGatewayDown
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *inMemoryAuditRepo) eventTypes() []domain.AuditEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}
