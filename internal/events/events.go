package events

import (
	"context"

	"github.com/google/uuid"
)

// Stream is the pub/sub channel all domain events go through.
const Stream = "events:amplyst"

// Event types
const (
	EventCampaignStatusChanged = "campaign_status_changed"
	EventCampaignExpired       = "campaign_expired"
	EventCampaignDeleted       = "campaign_deleted"
	EventApplicationSubmitted  = "application_submitted"
	EventApplicationDecided    = "application_decided"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	// Recipients are the users the event is delivered to over websocket.
	Recipients []uuid.UUID `json:"recipients,omitempty"`
	OccurredAt int64       `json:"occurred_at"` // epoch millis
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
