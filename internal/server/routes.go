package server

import (
	"net/http"
	"strings"

	"github.com/ternarybob/rogare/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.ServeHTTP)

	// API routes - Question generation
	mux.HandleFunc("/api/feedback", s.app.FeedbackHandler.GenerateHandler) // POST - generate follow-up questions

	// API routes - Sessions
	mux.HandleFunc("/api/sessions", s.handleSessionsRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/sessions/", s.handleSessionRoutes) // GET/DELETE /{id} and subpaths

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.StatusHandler) // GET - application status

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.notFoundHandler)

	return mux
}

// handleSessionsRoute dispatches the sessions collection route by method
func (s *Server) handleSessionsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.SessionHandler.ListHandler(w, r)
	case http.MethodPost:
		s.app.SessionHandler.CreateHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSessionRoutes routes session-scoped requests:
//
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	POST   /api/sessions/{id}/questions
//	POST   /api/sessions/{id}/answers
//	POST   /api/sessions/{id}/research
//	GET    /api/sessions/{id}/report
func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.SplitN(path, "/", 2)

	sessionID := parts[0]
	if sessionID == "" {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.app.SessionHandler.GetHandler(w, r, sessionID)
		case http.MethodDelete:
			s.app.SessionHandler.DeleteHandler(w, r, sessionID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "questions":
		s.app.SessionHandler.QuestionsHandler(w, r, sessionID)
	case "answers":
		s.app.SessionHandler.AnswersHandler(w, r, sessionID)
	case "research":
		s.app.ResearchHandler.StartHandler(w, r, sessionID)
	case "report":
		s.app.SessionHandler.ReportHandler(w, r, sessionID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// notFoundHandler returns a JSON 404 for unmatched API paths
func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, "Not found: "+r.URL.Path)
}
