package service

import (
	"context"
	"sync"
	"time"

	"member-finance/internal/core/domain"
	"member-finance/internal/core/ports"
	"member-finance/internal/metrics"

	"github.com/rs/zerolog"
)

const auditTimeout = 5 * time.Second

// AuditServiceImpl implements ports.AuditService.
type AuditServiceImpl struct {
	repo      ports.AuditRepository
	publisher ports.AuditPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewAuditService creates a new audit service.
// repo and publisher are both optional; with neither, events only reach the log.
func NewAuditService(repo ports.AuditRepository, publisher ports.AuditPublisher, log zerolog.Logger) *AuditServiceImpl {
	return &AuditServiceImpl{repo: repo, publisher: publisher, log: log}
}

// Log records an audit event asynchronously (fire-and-forget).
// The event outlives the caller's request, so only its values are kept
// from ctx, not its cancellation.
func (s *AuditServiceImpl) Log(ctx context.Context, event *domain.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()

		s.log.Info().
			Str("event_id", event.ID.String()).
			Str("event_type", string(event.EventType)).
			Str("actor_id", event.ActorID.String()).
			Str("subject_id", event.SubjectID.String()).
			Interface("metadata", event.Metadata).
			Msg("audit")

		if s.repo != nil {
			if err := s.repo.Create(ctx, event); err != nil {
				metrics.AuditFailures.WithLabelValues("persist").Inc()
				s.log.Warn().Err(err).Str("event_type", string(event.EventType)).Msg("failed to persist audit event")
			}
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, event); err != nil {
				metrics.AuditFailures.WithLabelValues("publish").Inc()
				s.log.Warn().Err(err).Str("event_type", string(event.EventType)).Msg("failed to publish audit event")
			}
		}
	}()
}

// Wait blocks until every pending audit event has been handled.
func (s *AuditServiceImpl) Wait() {
	s.wg.Wait()
}
