package auth

import (
	"github.com/amplyst/backend/internal/models"
	"github.com/google/uuid"
)

// Identity is the authenticated caller. It is resolved once per request and
// passed explicitly to every service operation.
type Identity struct {
	UserID  uuid.UUID
	Subject string
	Email   string
	Name    string
	Role    string // empty until onboarding
}

// Require returns ErrUnauthenticated for a zero identity.
func (id Identity) Require() error {
	if id.UserID == uuid.Nil {
		return models.ErrUnauthenticated
	}
	return nil
}

