// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	QuizDependencies
	MatchingDependencies
	CostsDependencies
	CanvasDependencies
	JournalDependencies
	StatsProvider
}

// Server wires HTTP routes for the activities API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	quizHandler     *QuizHandler
	matchingHandler *MatchingHandler
	costsHandler    *CostsHandler
	canvasHandler   *CanvasHandler
	journalHandler  *JournalHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		quizHandler:     NewQuizHandler(deps),
		matchingHandler: NewMatchingHandler(deps),
		costsHandler:    NewCostsHandler(deps),
		canvasHandler:   NewCanvasHandler(deps),
		journalHandler:  NewJournalHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	s.quizHandler.register(mux)
	s.matchingHandler.register(mux)
	s.costsHandler.register(mux)
	s.canvasHandler.register(mux)
	s.journalHandler.register(mux)
}
