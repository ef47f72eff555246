// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/posekit/internal/domain/catalog"
	"github.com/okian/posekit/internal/domain/counter"
	"github.com/okian/posekit/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	// Catalog reads.
	Exercises(ctx context.Context) []catalog.Exercise

	// Session lifecycle.
	StartSession(ctx context.Context, userID, exerciseID string) (string, error)
	SubmitFrame(ctx context.Context, f model.Frame) bool
	FinishSession(ctx context.Context, id string) (model.ExerciseResult, bool)
	CancelSession(ctx context.Context, id string) bool
	SessionState(ctx context.Context, id string) (counter.State, bool)

	// Analysis and derived reads.
	SubmitAnalysis(ctx context.Context, userID string, items []model.AnalysisItem) (model.AnalysisOutcome, error)
	Badges(ctx context.Context, userID string) []model.UserBadge
	History(ctx context.Context, userID string) []model.HistoryEntry
	Results(ctx context.Context, userID string) []model.ExerciseResult
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	analysesHandler *AnalysesHandler
	profileHandler  *ProfileHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps),
		analysesHandler: NewAnalysesHandler(deps),
		profileHandler:  NewProfileHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/exercises", MetricsMiddleware(s.sessionsHandler.HandleExercises, "exercises"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleSession, "sessions"))
	mux.HandleFunc("/analyses", MetricsMiddleware(s.analysesHandler.HandlePostAnalysis, "analyses"))
	mux.HandleFunc("/badges", MetricsMiddleware(s.profileHandler.HandleBadges, "badges"))
	mux.HandleFunc("/history", MetricsMiddleware(s.profileHandler.HandleHistory, "history"))
	mux.HandleFunc("/results", MetricsMiddleware(s.profileHandler.HandleResults, "results"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
