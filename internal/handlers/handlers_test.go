package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/models"
)

// mockFeedbackService implements interfaces.FeedbackService for testing
type mockFeedbackService struct {
	generateFunc func(ctx context.Context, query string, useSearchEnhancement bool) []string
}

func (m *mockFeedbackService) GenerateFeedback(ctx context.Context, query string, useSearchEnhancement bool) []string {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, query, useSearchEnhancement)
	}
	return []string{}
}

// mockSessionStorage implements interfaces.SessionStorage for testing
type mockSessionStorage struct {
	saveFunc         func(ctx context.Context, session *models.ResearchSession) error
	getFunc          func(ctx context.Context, id string) (*models.ResearchSession, error)
	listFunc         func(ctx context.Context) ([]*models.ResearchSession, error)
	deleteFunc       func(ctx context.Context, id string) error
	deleteBeforeFunc func(ctx context.Context, cutoff time.Time) (int, error)
}

func (m *mockSessionStorage) SaveSession(ctx context.Context, session *models.ResearchSession) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionStorage) GetSession(ctx context.Context, id string) (*models.ResearchSession, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, fmt.Errorf("session not found: %s", id)
}

func (m *mockSessionStorage) ListSessions(ctx context.Context) ([]*models.ResearchSession, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockSessionStorage) DeleteSession(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockSessionStorage) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if m.deleteBeforeFunc != nil {
		return m.deleteBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

// mockResearchService implements interfaces.ResearchService for testing
type mockResearchService struct {
	startFunc func(ctx context.Context, sessionID string) error
}

func (m *mockResearchService) StartResearch(ctx context.Context, sessionID string) error {
	if m.startFunc != nil {
		return m.startFunc(ctx, sessionID)
	}
	return nil
}

func TestFeedbackHandler_Generate(t *testing.T) {
	handler := NewFeedbackHandler(&mockFeedbackService{
		generateFunc: func(ctx context.Context, query string, useSearchEnhancement bool) []string {
			assert.Equal(t, "quantum computing", query)
			assert.True(t, useSearchEnhancement)
			return []string{"Q1?", "Q2?"}
		},
	}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{"query": "quantum computing"}`))
	w := httptest.NewRecorder()
	handler.GenerateHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Query     string   `json:"query"`
		Questions []string `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Q1?", "Q2?"}, resp.Questions)
}

func TestFeedbackHandler_EnhancementOptOut(t *testing.T) {
	handler := NewFeedbackHandler(&mockFeedbackService{
		generateFunc: func(ctx context.Context, query string, useSearchEnhancement bool) []string {
			assert.False(t, useSearchEnhancement)
			return []string{}
		},
	}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/feedback",
		strings.NewReader(`{"query": "topic", "use_search_enhancement": false}`))
	w := httptest.NewRecorder()
	handler.GenerateHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// Empty question list is a valid 200 response, not an error
	assert.Contains(t, w.Body.String(), `"questions":[]`)
}

func TestFeedbackHandler_EmptyQuery(t *testing.T) {
	handler := NewFeedbackHandler(&mockFeedbackService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{"query": "  "}`))
	w := httptest.NewRecorder()
	handler.GenerateHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackHandler_MethodNotAllowed(t *testing.T) {
	handler := NewFeedbackHandler(&mockFeedbackService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/feedback", nil)
	w := httptest.NewRecorder()
	handler.GenerateHandler(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSessionHandler_Create(t *testing.T) {
	var saved *models.ResearchSession
	storage := &mockSessionStorage{
		saveFunc: func(ctx context.Context, session *models.ResearchSession) error {
			saved = session
			return nil
		},
	}
	feedback := &mockFeedbackService{
		generateFunc: func(ctx context.Context, query string, useSearchEnhancement bool) []string {
			return []string{"Q1?"}
		},
	}
	handler := NewSessionHandler(storage, feedback, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions",
		strings.NewReader(`{"query": "topic", "breadth": 4, "depth": 2, "report_language": "English"}`))
	w := httptest.NewRecorder()
	handler.CreateHandler(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, saved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "topic", saved.Query)
	assert.Equal(t, []string{"Q1?"}, saved.Questions)
	assert.Equal(t, models.SessionStatusPending, saved.Status)
	assert.Equal(t, 4, saved.Breadth)
}

func TestSessionHandler_Get(t *testing.T) {
	storage := &mockSessionStorage{
		getFunc: func(ctx context.Context, id string) (*models.ResearchSession, error) {
			if id == "known" {
				return &models.ResearchSession{ID: "known", Query: "topic"}, nil
			}
			return nil, fmt.Errorf("session not found: %s", id)
		},
	}
	handler := NewSessionHandler(storage, &mockFeedbackService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/known", nil)
	w := httptest.NewRecorder()
	handler.GetHandler(w, req, "known")
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
	w = httptest.NewRecorder()
	handler.GetHandler(w, req, "missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Answers(t *testing.T) {
	session := &models.ResearchSession{
		ID:        "session-1",
		Query:     "topic",
		Questions: []string{"Q1?", "Q2?"},
		Status:    models.SessionStatusPending,
	}
	var saved *models.ResearchSession
	storage := &mockSessionStorage{
		getFunc: func(ctx context.Context, id string) (*models.ResearchSession, error) {
			return session, nil
		},
		saveFunc: func(ctx context.Context, s *models.ResearchSession) error {
			saved = s
			return nil
		},
	}
	handler := NewSessionHandler(storage, &mockFeedbackService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/session-1/answers",
		strings.NewReader(`{"answers": ["A1", "A2"]}`))
	w := httptest.NewRecorder()
	handler.AnswersHandler(w, req, "session-1")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, saved)
	assert.Equal(t, []string{"A1", "A2"}, saved.Answers)
}

func TestSessionHandler_Questions(t *testing.T) {
	session := &models.ResearchSession{
		ID:        "session-1",
		Query:     "topic",
		Questions: []string{"old?"},
		Answers:   []string{"stale"},
		Status:    models.SessionStatusPending,
	}
	var saved *models.ResearchSession
	storage := &mockSessionStorage{
		getFunc: func(ctx context.Context, id string) (*models.ResearchSession, error) {
			return session, nil
		},
		saveFunc: func(ctx context.Context, s *models.ResearchSession) error {
			saved = s
			return nil
		},
	}
	feedback := &mockFeedbackService{
		generateFunc: func(ctx context.Context, query string, useSearchEnhancement bool) []string {
			assert.Equal(t, "topic", query)
			assert.False(t, useSearchEnhancement)
			return []string{"new Q1?", "new Q2?"}
		},
	}
	handler := NewSessionHandler(storage, feedback, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/session-1/questions",
		strings.NewReader(`{"use_search_enhancement": false}`))
	w := httptest.NewRecorder()
	handler.QuestionsHandler(w, req, "session-1")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, saved)
	assert.Equal(t, []string{"new Q1?", "new Q2?"}, saved.Questions)
	assert.Nil(t, saved.Answers)
}

func TestSessionHandler_QuestionsRejectedWhileRunning(t *testing.T) {
	storage := &mockSessionStorage{
		getFunc: func(ctx context.Context, id string) (*models.ResearchSession, error) {
			return &models.ResearchSession{ID: id, Status: models.SessionStatusRunning}, nil
		},
	}
	handler := NewSessionHandler(storage, &mockFeedbackService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/session-1/questions", nil)
	w := httptest.NewRecorder()
	handler.QuestionsHandler(w, req, "session-1")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_AnswersRejectedWhileRunning(t *testing.T) {
	storage := &mockSessionStorage{
		getFunc: func(ctx context.Context, id string) (*models.ResearchSession, error) {
			return &models.ResearchSession{ID: id, Status: models.SessionStatusRunning}, nil
		},
	}
	handler := NewSessionHandler(storage, &mockFeedbackService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/session-1/answers",
		strings.NewReader(`{"answers": ["A1"]}`))
	w := httptest.NewRecorder()
	handler.AnswersHandler(w, req, "session-1")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_ReportHTML(t *testing.T) {
	storage := &mockSessionStorage{
		getFunc: func(ctx context.Context, id string) (*models.ResearchSession, error) {
			return &models.ResearchSession{
				ID:     id,
				Report: &models.ResearchReport{Title: "T", FinalReport: "# Heading\n\nbody text"},
			}, nil
		},
	}
	handler := NewSessionHandler(storage, &mockFeedbackService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/session-1/report?format=html", nil)
	w := httptest.NewRecorder()
	handler.ReportHandler(w, req, "session-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1")
	assert.Contains(t, w.Body.String(), "body text")
}

func TestSessionHandler_ReportMissing(t *testing.T) {
	storage := &mockSessionStorage{
		getFunc: func(ctx context.Context, id string) (*models.ResearchSession, error) {
			return &models.ResearchSession{ID: id}, nil
		},
	}
	handler := NewSessionHandler(storage, &mockFeedbackService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/session-1/report", nil)
	w := httptest.NewRecorder()
	handler.ReportHandler(w, req, "session-1")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResearchHandler_Start(t *testing.T) {
	handler := NewResearchHandler(&mockResearchService{
		startFunc: func(ctx context.Context, sessionID string) error {
			assert.Equal(t, "session-1", sessionID)
			return nil
		},
	}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/session-1/research", nil)
	w := httptest.NewRecorder()
	handler.StartHandler(w, req, "session-1")

	// Async runs acknowledge with 202
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "started")
}

func TestResearchHandler_StartConflict(t *testing.T) {
	handler := NewResearchHandler(&mockResearchService{
		startFunc: func(ctx context.Context, sessionID string) error {
			return fmt.Errorf("session %s already has a research run in progress", sessionID)
		},
	}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/session-1/research", nil)
	w := httptest.NewRecorder()
	handler.StartHandler(w, req, "session-1")

	assert.Equal(t, http.StatusConflict, w.Code)
}
