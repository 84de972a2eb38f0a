package amqp

import (
	"encoding/json"
	"time"

	"member-finance/internal/core/domain"

	"github.com/google/uuid"
)

// AuditMessage is the broker payload of an audit event.
type AuditMessage struct {
	ID        uuid.UUID              `json:"id"`
	EventType string                 `json:"event_type"`
	ActorID   uuid.UUID              `json:"actor_id"`
	SubjectID uuid.UUID              `json:"subject_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewAuditMessage converts a domain audit event into its wire form.
func NewAuditMessage(e *domain.AuditEvent) *AuditMessage {
	return &AuditMessage{
		ID:        e.ID,
		EventType: string(e.EventType),
		ActorID:   e.ActorID,
		SubjectID: e.SubjectID,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *AuditMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AuditMessageFromJSON decodes a message body.
func AuditMessageFromJSON(data []byte) (*AuditMessage, error) {
	var msg AuditMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
