package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit actor types
const (
	ActorUser   = "user"
	ActorSystem = "system"
)

// Audited entity types
const (
	EntityCampaign    = "campaign"
	EntityApplication = "application"
	EntityUser        = "user"
)

type AuditLog struct {
	ID          uuid.UUID      `json:"id"`
	ActorUserID *uuid.UUID     `json:"actor_user_id,omitempty"`
	ActorType   string         `json:"actor_type"` // user/system
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    *uuid.UUID     `json:"entity_id,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewAuditLog builds an entry for entityID. A nil actor means the scheduler
// or another system process made the change.
func NewAuditLog(actor *uuid.UUID, action, entityType string, entityID uuid.UUID, meta map[string]any) AuditLog {
	actorType := ActorUser
	if actor == nil {
		actorType = ActorSystem
	}
	return AuditLog{
		ActorUserID: actor,
		ActorType:   actorType,
		Action:      action,
		EntityType:  entityType,
		EntityID:    &entityID,
		Meta:        meta,
	}
}

// StatusChangeAction names a campaign status transition, e.g. campaign_status_draft_to_active.
func StatusChangeAction(from, to string) string {
	return fmt.Sprintf("campaign_status_%s_to_%s", from, to)
}
