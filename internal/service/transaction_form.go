package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"member-finance/internal/core/domain"
	"member-finance/internal/core/ports"
	"member-finance/internal/metrics"
	"member-finance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransactionForm captures one transaction entry for an actor.
//
// A form accepts one submit at a time. A failed submit re-opens it and keeps
// the error in LastError; a successful one leaves it closed for good.
type TransactionForm struct {
	creator ports.TransactionCreator
	actorID uuid.UUID
	log     zerolog.Logger

	submitting atomic.Bool

	mu      sync.Mutex
	lastErr string

	// OnSuccess, when set, is called with the persisted transaction.
	OnSuccess func(*domain.Transaction)
}

// NewTransactionForm creates an open form submitting to creator as actorID.
func NewTransactionForm(creator ports.TransactionCreator, actorID uuid.UUID, log zerolog.Logger) *TransactionForm {
	return &TransactionForm{
		creator: creator,
		actorID: actorID,
		log:     log,
	}
}

// Submit validates in, resolves the recipient against members and creates
// the transaction. Validation failures never reach the creator.
func (f *TransactionForm) Submit(ctx context.Context, in TransactionFormInput, members domain.MemberDirectory) (*domain.Transaction, error) {
	nt, err := ValidateTransactionForm(in)
	if err != nil {
		metrics.FormRejections.WithLabelValues("validation").Inc()
		return nil, err
	}
	nt.Recipient = ResolveRecipient(in, members)

	if !f.submitting.CompareAndSwap(false, true) {
		metrics.FormRejections.WithLabelValues("in_progress").Inc()
		return nil, apperror.ErrSubmitInProgress()
	}

	created, err := f.creator.CreateTransaction(ctx, nt, f.actorID)
	if err != nil {
		f.setLastError(err)
		f.submitting.Store(false)
		f.log.Warn().Err(err).Str("actor_id", f.actorID.String()).Msg("Transaction submit failed")
		return nil, err
	}

	f.setLastError(nil)
	if f.OnSuccess != nil {
		f.OnSuccess(created)
	}
	return created, nil
}

// Submitting reports whether a submit is in flight or has succeeded.
func (f *TransactionForm) Submitting() bool {
	return f.submitting.Load()
}

// LastError returns the message of the most recent failed submit, or "".
func (f *TransactionForm) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *TransactionForm) setLastError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		f.lastErr = ""
		return
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		f.lastErr = appErr.Message
		return
	}
	f.lastErr = err.Error()
}

// TransactionForms keeps one open form per actor so concurrent submits from
// the same actor are rejected instead of racing.
type TransactionForms struct {
	creator ports.TransactionCreator
	log     zerolog.Logger

	mu   sync.Mutex
	open map[uuid.UUID]*TransactionForm
}

// NewTransactionForms creates an empty form registry.
func NewTransactionForms(creator ports.TransactionCreator, log zerolog.Logger) *TransactionForms {
	return &TransactionForms{
		creator: creator,
		log:     log,
		open:    make(map[uuid.UUID]*TransactionForm),
	}
}

// Submit submits in through actorID's open form. Once a form succeeds it is
// dropped, so the actor's next entry starts on a fresh one.
func (r *TransactionForms) Submit(ctx context.Context, actorID uuid.UUID, in TransactionFormInput, members domain.MemberDirectory) (*domain.Transaction, error) {
	form := r.formFor(actorID)

	created, err := form.Submit(ctx, in, members)
	if err == nil {
		r.close(actorID, form)
	}
	return created, err
}

func (r *TransactionForms) formFor(actorID uuid.UUID) *TransactionForm {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, ok := r.open[actorID]
	if !ok {
		form = NewTransactionForm(r.creator, actorID, r.log)
		r.open[actorID] = form
	}
	return form
}

func (r *TransactionForms) close(actorID uuid.UUID, form *TransactionForm) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open[actorID] == form {
		delete(r.open, actorID)
	}
}
