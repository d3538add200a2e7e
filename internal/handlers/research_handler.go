package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/interfaces"
)

// ResearchHandler handles deep-research run requests
type ResearchHandler struct {
	researchService interfaces.ResearchService
	logger          arbor.ILogger
}

// NewResearchHandler creates a new research handler with dependencies
func NewResearchHandler(researchService interfaces.ResearchService, logger arbor.ILogger) *ResearchHandler {
	return &ResearchHandler{
		researchService: researchService,
		logger:          logger,
	}
}

// StartHandler handles POST /api/sessions/{id}/research requests.
// The run is asynchronous: the response confirms the start, and progress
// flows through the websocket event stream and the session record.
func (h *ResearchHandler) StartHandler(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.researchService.StartResearch(r.Context(), sessionID); err != nil {
		h.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to start research run")
		WriteError(w, http.StatusConflict, err.Error())
		return
	}

	WriteStarted(w, "Research run started for session "+sessionID)
}
