package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
)

// StatusHandler reports service health and build information
type StatusHandler struct {
	searchService interfaces.WebSearchService
	logger        arbor.ILogger
	startTime     time.Time
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(searchService interfaces.WebSearchService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		searchService: searchService,
		logger:        logger,
		startTime:     time.Now(),
	}
}

// StatusHandler handles GET /api/status requests
func (h *StatusHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"version":       common.GetVersion(),
		"build":         common.GetFullVersion(),
		"search_engine": h.searchService.Engine(),
		"uptime":        time.Since(h.startTime).Round(time.Second).String(),
		"goroutines":    common.GetGoroutineCount(),
	})
}
