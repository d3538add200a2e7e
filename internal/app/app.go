package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/common"
	"github.com/ternarybob/rogare/internal/handlers"
	"github.com/ternarybob/rogare/internal/interfaces"
	"github.com/ternarybob/rogare/internal/services/events"
	"github.com/ternarybob/rogare/internal/services/feedback"
	"github.com/ternarybob/rogare/internal/services/llm"
	"github.com/ternarybob/rogare/internal/services/research"
	"github.com/ternarybob/rogare/internal/services/scheduler"
	"github.com/ternarybob/rogare/internal/services/search"
	"github.com/ternarybob/rogare/internal/services/translate"
	"github.com/ternarybob/rogare/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB             *badger.BadgerDB
	SessionStorage interfaces.SessionStorage

	// Core services
	EventService     interfaces.EventService
	ChatService      interfaces.ChatService
	SearchService    interfaces.WebSearchService
	TranslateService interfaces.TranslationService
	FeedbackService  interfaces.FeedbackService
	ResearchService  interfaces.ResearchService
	SchedulerService *scheduler.Service

	// HTTP handlers
	FeedbackHandler *handlers.FeedbackHandler
	SessionHandler  *handlers.SessionHandler
	ResearchHandler *handlers.ResearchHandler
	StatusHandler   *handlers.StatusHandler
	WSHandler       *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Storage
	db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db
	app.SessionStorage = badger.NewSessionStorage(db, logger)

	// Events
	app.EventService = events.NewService(logger)

	// LLM providers
	chatService, err := llm.NewChatService(&cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}
	app.ChatService = chatService

	// Web search
	searchService, err := search.NewWebSearchService(&cfg.Search, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search service: %w", err)
	}
	app.SearchService = searchService

	// Question-generation pipeline
	app.TranslateService = translate.NewTranslateService(app.ChatService, &cfg.LLM, logger)
	app.FeedbackService = feedback.NewFeedbackService(
		app.ChatService,
		app.TranslateService,
		app.SearchService,
		&cfg.LLM,
		&cfg.Search,
		logger,
	)

	// Deep-research engine. Without a Google API key the engine is
	// disabled; question generation still works.
	var engine interfaces.ResearchEngine
	if cfg.Research.GoogleAPIKey != "" {
		engine, err = research.NewGeminiEngine(ctx, &cfg.Research, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize research engine: %w", err)
		}
	} else {
		logger.Warn().Msg("No Google API key configured, research runs are disabled")
		engine = research.NewDisabledEngine(logger)
	}

	reportWriter := research.NewReportWriter(app.ChatService, &cfg.LLM, logger)
	app.ResearchService = research.NewResearchService(
		engine,
		reportWriter,
		app.SessionStorage,
		app.EventService,
		logger,
	)

	// Session retention
	app.SchedulerService = scheduler.NewService(&cfg.Sessions, app.SessionStorage, logger)
	if err := app.SchedulerService.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	// HTTP handlers
	app.FeedbackHandler = handlers.NewFeedbackHandler(app.FeedbackService, logger)
	app.SessionHandler = handlers.NewSessionHandler(app.SessionStorage, app.FeedbackService, logger)
	app.ResearchHandler = handlers.NewResearchHandler(app.ResearchService, logger)
	app.StatusHandler = handlers.NewStatusHandler(app.SearchService, logger)

	wsHandler, err := handlers.NewWebSocketHandler(app.EventService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize websocket handler: %w", err)
	}
	app.WSHandler = wsHandler

	logger.Info().
		Str("search_engine", app.SearchService.Engine()).
		Bool("research_enabled", cfg.Research.GoogleAPIKey != "").
		Msg("Application initialization complete")

	return app, nil
}

// Close releases all application resources in reverse dependency order
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application")

	if a.WSHandler != nil {
		a.WSHandler.Shutdown()
	}
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.ChatService != nil {
		if err := a.ChatService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close chat service")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
