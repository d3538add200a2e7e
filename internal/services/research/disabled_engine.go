package research

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
)

// DisabledEngine stands in when no Google API key is configured. Question
// generation still works; starting a research run fails with a clear error
// instead of a nil dereference.
type DisabledEngine struct {
	logger arbor.ILogger
}

// Compile-time assertion: DisabledEngine implements ResearchEngine
var _ interfaces.ResearchEngine = (*DisabledEngine)(nil)

// NewDisabledEngine creates a no-op research engine
func NewDisabledEngine(logger arbor.ILogger) *DisabledEngine {
	return &DisabledEngine{logger: logger}
}

// Research always fails with a configuration error
func (e *DisabledEngine) Research(ctx context.Context, req interfaces.ResearchRequest) (*models.ResearchResults, error) {
	e.logger.Warn().Str("query", req.Query).Msg("Research requested but no engine is configured")
	return nil, fmt.Errorf("research engine is not configured (set GEMINI_API_KEY or research.google_api_key in config)")
}
