package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SessionStorage implements the SessionStorage interface for Badger
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSession creates or updates a session (upsert by ID)
func (s *SessionStorage) SaveSession(ctx context.Context, session *models.ResearchSession) error {
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.db.Store().Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns the session with the given ID
func (s *SessionStorage) GetSession(ctx context.Context, id string) (*models.ResearchSession, error) {
	var session models.ResearchSession
	if err := s.db.Store().Get(id, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListSessions returns all sessions ordered by creation time descending
func (s *SessionStorage) ListSessions(ctx context.Context) ([]*models.ResearchSession, error) {
	var sessions []models.ResearchSession
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if err := s.db.Store().Find(&sessions, query); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	result := make([]*models.ResearchSession, len(sessions))
	for i := range sessions {
		result[i] = &sessions[i]
	}
	return result, nil
}

// DeleteSession removes the session with the given ID
func (s *SessionStorage) DeleteSession(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.ResearchSession{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("session not found: %s", id)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteSessionsBefore removes sessions last updated before the cutoff.
// Returns the number of sessions deleted.
func (s *SessionStorage) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var expired []models.ResearchSession
	query := badgerhold.Where("UpdatedAt").Lt(cutoff)
	if err := s.db.Store().Find(&expired, query); err != nil {
		return 0, fmt.Errorf("failed to find expired sessions: %w", err)
	}

	deleted := 0
	for i := range expired {
		if err := s.db.Store().Delete(expired[i].ID, &models.ResearchSession{}); err != nil {
			s.logger.Warn().Err(err).Str("session_id", expired[i].ID).Msg("Failed to delete expired session")
			continue
		}
		deleted++
	}

	return deleted, nil
}
