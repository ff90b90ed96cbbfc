package services

import (
	"context"

	"github.com/amplyst/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recordAudit writes an audit entry. Failures are logged and never fail the
// operation that produced them.
func recordAudit(ctx context.Context, store AuditStore, log *zap.Logger, actor *uuid.UUID, action, entityType string, entityID uuid.UUID, meta map[string]any) {
	if err := store.Log(ctx, models.NewAuditLog(actor, action, entityType, entityID, meta)); err != nil {
		log.Warn("audit log write failed",
			zap.String("action", action),
			zap.String("entity_id", entityID.String()),
			zap.Error(err),
		)
	}
}
