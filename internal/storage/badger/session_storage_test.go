package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestStorage(t *testing.T) *SessionStorage {
	t.Helper()
	tmpDir := t.TempDir()

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store}
	return NewSessionStorage(db, arbor.NewLogger()).(*SessionStorage)
}

func TestSessionLifecycle(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	session := &models.ResearchSession{
		ID:        "session-1",
		Query:     "quantum computing",
		Questions: []string{"Q1", "Q2"},
		Status:    models.SessionStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, storage.SaveSession(ctx, session))

	loaded, err := storage.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "quantum computing", loaded.Query)
	assert.Equal(t, []string{"Q1", "Q2"}, loaded.Questions)
	assert.Equal(t, models.SessionStatusPending, loaded.Status)

	// Upsert updates in place
	loaded.Status = models.SessionStatusCompleted
	loaded.Answers = []string{"A1", "A2"}
	require.NoError(t, storage.SaveSession(ctx, loaded))

	updated, err := storage.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, updated.Status)
	assert.Equal(t, []string{"A1", "A2"}, updated.Answers)

	require.NoError(t, storage.DeleteSession(ctx, "session-1"))
	_, err = storage.GetSession(ctx, "session-1")
	assert.Error(t, err)
}

func TestSaveSession_RequiresID(t *testing.T) {
	storage := newTestStorage(t)
	err := storage.SaveSession(context.Background(), &models.ResearchSession{})
	assert.Error(t, err)
}

func TestGetSession_NotFound(t *testing.T) {
	storage := newTestStorage(t)
	_, err := storage.GetSession(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListSessions_OrderedByCreationDesc(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, storage.SaveSession(ctx, &models.ResearchSession{
			ID:        id,
			Query:     id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: time.Now(),
		}))
	}

	sessions, err := storage.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[2].ID)
}

func TestDeleteSessionsBefore(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, storage.SaveSession(ctx, &models.ResearchSession{
		ID:        "stale",
		UpdatedAt: now.AddDate(0, 0, -10),
	}))
	require.NoError(t, storage.SaveSession(ctx, &models.ResearchSession{
		ID:        "fresh",
		UpdatedAt: now,
	}))

	deleted, err := storage.DeleteSessionsBefore(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = storage.GetSession(ctx, "stale")
	assert.Error(t, err)
	_, err = storage.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}
