package interfaces

import (
	"context"

	"github.com/ternarybob/rogare/internal/models"
)

// ResearchRequest describes one deep-research run. Breadth controls how many
// follow-up queries are explored per level, Depth how many levels deep the
// engine follows them.
type ResearchRequest struct {
	Query   string
	Breadth int
	Depth   int
}

// ResearchEngine is the deep-research collaborator boundary: it takes a
// combined query and returns accumulated learnings plus the URLs visited
// while searching. Implementations perform live web searches.
type ResearchEngine interface {
	Research(ctx context.Context, req ResearchRequest) (*models.ResearchResults, error)
}

// ReportWriter composes the final report from research results.
type ReportWriter interface {
	WriteFinalReport(ctx context.Context, prompt string, results *models.ResearchResults, language string) (*models.ResearchReport, error)
}

// ResearchService orchestrates a session's deep-research run: engine
// execution, report writing, session persistence, and progress events.
type ResearchService interface {
	// StartResearch kicks off an asynchronous research run for the session.
	// It returns immediately after the session transitions to running;
	// progress is observable via events and the session record.
	StartResearch(ctx context.Context, sessionID string) error
}
