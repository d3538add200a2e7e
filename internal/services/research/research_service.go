package research

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/models"
)

// Service orchestrates deep-research runs. StartResearch validates the
// session and returns immediately; the run itself happens on a background
// goroutine, reporting progress through the event service and persisting
// state transitions on the session record.
type Service struct {
	engine         interfaces.ResearchEngine
	writer         interfaces.ReportWriter
	sessionStorage interfaces.SessionStorage
	eventService   interfaces.EventService
	logger         arbor.ILogger

	// active holds the session IDs with an in-flight run so two
	// concurrent StartResearch calls cannot both pass the running check.
	mu     sync.Mutex
	active map[string]struct{}
}

// Compile-time assertion: Service implements ResearchService
var _ interfaces.ResearchService = (*Service)(nil)

// NewResearchService creates a new research orchestration service
func NewResearchService(
	engine interfaces.ResearchEngine,
	writer interfaces.ReportWriter,
	sessionStorage interfaces.SessionStorage,
	eventService interfaces.EventService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		engine:         engine,
		writer:         writer,
		sessionStorage: sessionStorage,
		eventService:   eventService,
		logger:         logger,
		active:         make(map[string]struct{}),
	}
}

// StartResearch transitions the session to running and launches the run.
// At most one run per session can be in flight; concurrent starts for the
// same session return an error.
func (s *Service) StartResearch(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	if _, inFlight := s.active[sessionID]; inFlight {
		s.mu.Unlock()
		return fmt.Errorf("session %s already has a research run in progress", sessionID)
	}
	s.active[sessionID] = struct{}{}
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		delete(s.active, sessionID)
		s.mu.Unlock()
	}

	session, err := s.sessionStorage.GetSession(ctx, sessionID)
	if err != nil {
		release()
		return fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	if session.Status == models.SessionStatusRunning {
		release()
		return fmt.Errorf("session %s already has a research run in progress", sessionID)
	}

	session.Status = models.SessionStatusRunning
	session.Error = ""
	session.UpdatedAt = time.Now()
	if err := s.sessionStorage.SaveSession(ctx, session); err != nil {
		release()
		return fmt.Errorf("failed to mark session %s running: %w", sessionID, err)
	}

	s.publishProgress(ctx, sessionID, "started", "Research run started")

	// The run outlives the HTTP request that triggered it
	common.SafeGo(s.logger, "research-run-"+sessionID, func() {
		defer release()
		s.run(context.Background(), session)
	})

	return nil
}

// run executes the research and report phases, recording the outcome on
// the session. All failure paths land the session in failed status.
func (s *Service) run(ctx context.Context, session *models.ResearchSession) {
	s.logger.Info().
		Str("session_id", session.ID).
		Str("query", session.Query).
		Int("breadth", session.Breadth).
		Int("depth", session.Depth).
		Msg("Starting research run")

	combinedQuery := session.CombinedQuery()

	s.publishProgress(ctx, session.ID, "researching", "Running deep research")

	results, err := s.engine.Research(ctx, interfaces.ResearchRequest{
		Query:   combinedQuery,
		Breadth: session.Breadth,
		Depth:   session.Depth,
	})
	if err != nil {
		s.failSession(ctx, session, fmt.Errorf("research failed: %w", err))
		return
	}

	session.Learnings = results.Learnings
	session.VisitedURLs = results.VisitedURLs
	session.UpdatedAt = time.Now()
	if err := s.sessionStorage.SaveSession(ctx, session); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to persist interim research results")
	}

	s.publishProgress(ctx, session.ID, "writing_report", "Writing final report")

	report, err := s.writer.WriteFinalReport(ctx, combinedQuery, results, session.ReportLanguage)
	if err != nil {
		s.failSession(ctx, session, fmt.Errorf("report generation failed: %w", err))
		return
	}

	session.Report = report
	session.Status = models.SessionStatusCompleted
	session.UpdatedAt = time.Now()
	if err := s.sessionStorage.SaveSession(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to persist completed session")
	}

	s.publishProgress(ctx, session.ID, "completed", "Research completed")
	s.publishSessionUpdated(ctx, session)

	s.logger.Info().
		Str("session_id", session.ID).
		Int("learnings", len(session.Learnings)).
		Int("visited_urls", len(session.VisitedURLs)).
		Msg("Research run completed")
}

func (s *Service) failSession(ctx context.Context, session *models.ResearchSession, cause error) {
	s.logger.Error().Err(cause).Str("session_id", session.ID).Msg("Research run failed")

	session.Status = models.SessionStatusFailed
	session.Error = cause.Error()
	session.UpdatedAt = time.Now()
	if err := s.sessionStorage.SaveSession(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to persist failed session")
	}

	s.publishProgress(ctx, session.ID, "failed", cause.Error())
	s.publishSessionUpdated(ctx, session)
}

func (s *Service) publishProgress(ctx context.Context, sessionID, stage, message string) {
	if err := s.eventService.Publish(ctx, interfaces.Event{
		Type:      interfaces.EventResearchProgress,
		SessionID: sessionID,
		Payload: map[string]interface{}{
			"stage":   stage,
			"message": message,
		},
	}); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to publish progress event")
	}
}

func (s *Service) publishSessionUpdated(ctx context.Context, session *models.ResearchSession) {
	if err := s.eventService.Publish(ctx, interfaces.Event{
		Type:      interfaces.EventSessionUpdated,
		SessionID: session.ID,
		Payload: map[string]interface{}{
			"status": string(session.Status),
		},
	}); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to publish session update event")
	}
}
