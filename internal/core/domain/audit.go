package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEventType names an audited side effect.
type AuditEventType string

const (
	AuditTransactionCreated AuditEventType = "transaction_created"
	AuditTransactionDeleted AuditEventType = "transaction_deleted"
	AuditBankBalanceUpdated AuditEventType = "bank_balance_updated"
)

// AuditEvent records who did what to which record, and when.
type AuditEvent struct {
	ID        uuid.UUID              `json:"id"`
	EventType AuditEventType         `json:"event_type"`
	ActorID   uuid.UUID              `json:"actor_id"`
	SubjectID uuid.UUID              `json:"subject_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewAuditEvent stamps a new event with an id and the current time.
func NewAuditEvent(eventType AuditEventType, actorID, subjectID uuid.UUID, metadata map[string]interface{}) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.New(),
		EventType: eventType,
		ActorID:   actorID,
		SubjectID: subjectID,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}
