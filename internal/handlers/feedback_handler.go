package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/interfaces"
)

// FeedbackHandler handles follow-up question generation requests
type FeedbackHandler struct {
	feedbackService interfaces.FeedbackService
	logger          arbor.ILogger
}

// NewFeedbackHandler creates a new feedback handler with dependencies
func NewFeedbackHandler(feedbackService interfaces.FeedbackService, logger arbor.ILogger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

type feedbackRequest struct {
	Query                string `json:"query"`
	UseSearchEnhancement *bool  `json:"use_search_enhancement"`
}

// GenerateHandler handles POST /api/feedback requests.
// An empty questions array is a valid response: it means either no
// clarification is needed or generation silently degraded. Clients must
// render it gracefully, not as an error.
func (h *FeedbackHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, http.StatusBadRequest, "query is required")
		return
	}

	// Search enhancement defaults on
	useSearch := true
	if req.UseSearchEnhancement != nil {
		useSearch = *req.UseSearchEnhancement
	}

	h.logger.Info().
		Str("query", req.Query).
		Bool("search_enhancement", useSearch).
		Msg("Generating follow-up questions")

	questions := h.feedbackService.GenerateFeedback(r.Context(), req.Query, useSearch)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":     req.Query,
		"questions": questions,
	})
}
