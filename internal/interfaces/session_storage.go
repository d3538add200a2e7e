package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/rogare/internal/models"
)

// SessionStorage persists research sessions across the question/answer and
// deep-research phases. Sessions are explicit per-request state, never a
// process-wide singleton.
type SessionStorage interface {
	// SaveSession creates or updates a session (upsert by ID).
	SaveSession(ctx context.Context, session *models.ResearchSession) error

	// GetSession returns the session with the given ID, or an error if it
	// does not exist.
	GetSession(ctx context.Context, id string) (*models.ResearchSession, error)

	// ListSessions returns all sessions ordered by creation time descending.
	ListSessions(ctx context.Context) ([]*models.ResearchSession, error)

	// DeleteSession removes the session with the given ID.
	DeleteSession(ctx context.Context, id string) error

	// DeleteSessionsBefore removes sessions last updated before the cutoff.
	// Returns the number of sessions deleted.
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int, error)
}
