package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// SessionHandler handles research session CRUD and answer collection
type SessionHandler struct {
	sessionStorage  interfaces.SessionStorage
	feedbackService interfaces.FeedbackService
	logger          arbor.ILogger
}

// NewSessionHandler creates a new session handler with dependencies
func NewSessionHandler(sessionStorage interfaces.SessionStorage, feedbackService interfaces.FeedbackService, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		sessionStorage:  sessionStorage,
		feedbackService: feedbackService,
		logger:          logger,
	}
}

type createSessionRequest struct {
	Query                string `json:"query"`
	Breadth              int    `json:"breadth"`
	Depth                int    `json:"depth"`
	ReportLanguage       string `json:"report_language"`
	UseSearchEnhancement *bool  `json:"use_search_enhancement"`
}

type submitAnswersRequest struct {
	Answers []string `json:"answers"`
}

// CreateHandler handles POST /api/sessions requests. Creating a session
// runs question generation synchronously and returns the session with its
// follow-up questions populated.
func (h *SessionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, http.StatusBadRequest, "query is required")
		return
	}

	useSearch := true
	if req.UseSearchEnhancement != nil {
		useSearch = *req.UseSearchEnhancement
	}

	questions := h.feedbackService.GenerateFeedback(r.Context(), req.Query, useSearch)

	now := time.Now()
	session := &models.ResearchSession{
		ID:             uuid.New().String(),
		Query:          req.Query,
		Questions:      questions,
		ReportLanguage: req.ReportLanguage,
		Breadth:        req.Breadth,
		Depth:          req.Depth,
		Status:         models.SessionStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.sessionStorage.SaveSession(r.Context(), session); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save new session")
		WriteError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info().
		Str("session_id", session.ID).
		Str("query", session.Query).
		Int("questions", len(session.Questions)).
		Msg("Session created")

	WriteJSON(w, http.StatusCreated, session)
}

// ListHandler handles GET /api/sessions requests
func (h *SessionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sessions, err := h.sessionStorage.ListSessions(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list sessions")
		WriteError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetHandler handles GET /api/sessions/{id} requests
func (h *SessionHandler) GetHandler(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	session, err := h.sessionStorage.GetSession(r.Context(), sessionID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Session not found: "+sessionID)
		return
	}

	WriteJSON(w, http.StatusOK, session)
}

// DeleteHandler handles DELETE /api/sessions/{id} requests
func (h *SessionHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := h.sessionStorage.DeleteSession(r.Context(), sessionID); err != nil {
		WriteError(w, http.StatusNotFound, "Session not found: "+sessionID)
		return
	}

	h.logger.Info().Str("session_id", sessionID).Msg("Session deleted")
	WriteSuccess(w, "Session deleted")
}

type generateQuestionsRequest struct {
	UseSearchEnhancement *bool `json:"use_search_enhancement"`
}

// QuestionsHandler handles POST /api/sessions/{id}/questions requests.
// Regenerates the follow-up questions for an existing session and clears
// any previously submitted answers.
func (h *SessionHandler) QuestionsHandler(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req generateQuestionsRequest
	if r.Body != nil {
		// Body is optional; ignore decode errors from an empty body
		json.NewDecoder(r.Body).Decode(&req)
	}
	useSearch := true
	if req.UseSearchEnhancement != nil {
		useSearch = *req.UseSearchEnhancement
	}

	session, err := h.sessionStorage.GetSession(r.Context(), sessionID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Session not found: "+sessionID)
		return
	}

	if session.Status == models.SessionStatusRunning {
		WriteError(w, http.StatusConflict, "Cannot regenerate questions while research is running")
		return
	}

	session.Questions = h.feedbackService.GenerateFeedback(r.Context(), session.Query, useSearch)
	session.Answers = nil
	session.UpdatedAt = time.Now()

	if err := h.sessionStorage.SaveSession(r.Context(), session); err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to save regenerated questions")
		WriteError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info().
		Str("session_id", sessionID).
		Int("questions", len(session.Questions)).
		Msg("Session questions regenerated")

	WriteJSON(w, http.StatusOK, session)
}

// AnswersHandler handles POST /api/sessions/{id}/answers requests
func (h *SessionHandler) AnswersHandler(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req submitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.sessionStorage.GetSession(r.Context(), sessionID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Session not found: "+sessionID)
		return
	}

	if session.Status == models.SessionStatusRunning {
		WriteError(w, http.StatusConflict, "Cannot update answers while research is running")
		return
	}

	session.Answers = req.Answers
	session.UpdatedAt = time.Now()

	if err := h.sessionStorage.SaveSession(r.Context(), session); err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to save answers")
		WriteError(w, http.StatusInternalServerError, "Failed to save answers")
		return
	}

	WriteJSON(w, http.StatusOK, session)
}

// ReportHandler handles GET /api/sessions/{id}/report requests.
// With ?format=html the markdown report is rendered to HTML.
func (h *SessionHandler) ReportHandler(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	session, err := h.sessionStorage.GetSession(r.Context(), sessionID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Session not found: "+sessionID)
		return
	}
	if session.Report == nil {
		WriteError(w, http.StatusNotFound, "No report available for session: "+sessionID)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		rendered, err := renderMarkdown(session.Report.FinalReport)
		if err != nil {
			h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to render report to HTML")
			WriteError(w, http.StatusInternalServerError, "Failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(rendered)
		return
	}

	WriteJSON(w, http.StatusOK, session.Report)
}

// renderMarkdown converts the markdown report body to HTML
func renderMarkdown(markdown string) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
