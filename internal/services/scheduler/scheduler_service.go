package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/interfaces"
)

// Service runs periodic maintenance jobs. The only registered job prunes
// research sessions older than the retention window on a cron schedule.
type Service struct {
	config         *common.SessionsConfig
	sessionStorage interfaces.SessionStorage
	cron           *cron.Cron
	logger         arbor.ILogger
	mu             sync.Mutex
	running        bool
}

// NewService creates a new scheduler service
func NewService(config *common.SessionsConfig, sessionStorage interfaces.SessionStorage, logger arbor.ILogger) *Service {
	return &Service{
		config:         config,
		sessionStorage: sessionStorage,
		cron:           cron.New(),
		logger:         logger,
	}
}

// Start registers the cleanup job and begins the scheduler
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	schedule := s.config.CleanupSchedule
	if schedule == "" {
		schedule = "0 3 * * *" // Default: daily at 03:00
	}

	if _, err := s.cron.AddFunc(schedule, s.runCleanup); err != nil {
		return fmt.Errorf("failed to register session cleanup job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Int("retention_days", s.config.RetentionDays).
		Msg("Session cleanup scheduler started")

	return nil
}

// Stop halts the scheduler, waiting for a running job to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Session cleanup scheduler stopped")
}

// runCleanup deletes sessions last updated before the retention cutoff
func (s *Service) runCleanup() {
	retention := s.config.RetentionDays
	if retention <= 0 {
		retention = 7
	}
	cutoff := time.Now().AddDate(0, 0, -retention)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.sessionStorage.DeleteSessionsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Str("cutoff", cutoff.Format(time.RFC3339)).Msg("Session cleanup failed")
		return
	}

	if deleted > 0 {
		s.logger.Info().
			Int("deleted", deleted).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Expired sessions pruned")
	} else {
		s.logger.Debug().Str("cutoff", cutoff.Format(time.RFC3339)).Msg("No expired sessions to prune")
	}
}
