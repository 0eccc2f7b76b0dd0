// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	repository "github.com/okian/stride/internal/adapters/repository"
	service "github.com/okian/stride/internal/app"
	"github.com/okian/stride/internal/auth"
	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/ranking"
	"github.com/okian/stride/internal/domain/types"
	"github.com/okian/stride/pkg/logger"
	"github.com/okian/stride/pkg/metrics"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Authorizer

	Login(ctx context.Context, username, password string) (string, auth.Claims, error)
	Ping(ctx context.Context) error
	GetStats(ctx context.Context) (types.Stats, error)
	Categories() []model.Category

	// Ranking views.
	Leaderboards(ctx context.Context) (ranking.Leaderboards, error)
	MeetDetail(ctx context.Context, meetID int64) (model.Meet, ranking.MeetTables, error)
	AthleteHistory(ctx context.Context, athleteID int64) (service.History, error)

	// Roster CRUD.
	ListAthletes(ctx context.Context) ([]model.Athlete, error)
	CreateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error)
	UpdateAthlete(ctx context.Context, id int64, a model.Athlete) (model.Athlete, error)
	DeleteAthlete(ctx context.Context, id int64) error
	ListMeets(ctx context.Context) ([]model.Meet, error)
	CreateMeet(ctx context.Context, m model.Meet) (model.Meet, error)
	UpdateMeet(ctx context.Context, id int64, m model.Meet) (model.Meet, error)
	DeleteMeet(ctx context.Context, id int64) error
	ListResults(ctx context.Context, f service.ResultFilter) ([]model.Result, error)
	CreateResult(ctx context.Context, r model.Result) (model.Result, error)
	UpdateResult(ctx context.Context, id int64, r model.Result) (model.Result, error)
	DeleteResult(ctx context.Context, id int64) error
	ListCoaches(ctx context.Context) ([]model.Coach, error)
	CreateCoach(ctx context.Context, c model.Coach) (model.Coach, error)
	UpdateCoach(ctx context.Context, id int64, c model.Coach) (model.Coach, error)
	DeleteCoach(ctx context.Context, id int64) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps   Dependencies
	logger logger.Logger

	athletes collection[model.Athlete]
	meets    collection[model.Meet]
	results  collection[model.Result]
	coaches  collection[model.Coach]
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, l logger.Logger) *Server {
	if l == nil {
		l = logger.Default().Named("api")
	}
	s := &Server{deps: deps, logger: l}
	s.athletes = collection[model.Athlete]{
		srv:    s,
		name:   "athletes",
		list:   func(r *http.Request) ([]model.Athlete, error) { return deps.ListAthletes(r.Context()) },
		create: deps.CreateAthlete,
		update: deps.UpdateAthlete,
		remove: deps.DeleteAthlete,
	}
	s.meets = collection[model.Meet]{
		srv:    s,
		name:   "meets",
		list:   func(r *http.Request) ([]model.Meet, error) { return deps.ListMeets(r.Context()) },
		create: deps.CreateMeet,
		update: deps.UpdateMeet,
		remove: deps.DeleteMeet,
	}
	s.results = collection[model.Result]{
		srv:    s,
		name:   "results",
		list:   func(r *http.Request) ([]model.Result, error) { return listResults(deps, r) },
		create: deps.CreateResult,
		update: deps.UpdateResult,
		remove: deps.DeleteResult,
	}
	s.coaches = collection[model.Coach]{
		srv:    s,
		name:   "coaches",
		list:   func(r *http.Request) ([]model.Coach, error) { return deps.ListCoaches(r.Context()) },
		create: deps.CreateCoach,
		update: deps.UpdateCoach,
		remove: deps.DeleteCoach,
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("GET /api/rankings", MetricsMiddleware(s.handleRankings, "rankings"))
	mux.HandleFunc("GET /api/meets/{id}/results", MetricsMiddleware(s.handleMeetDetail, "meet_detail"))
	mux.HandleFunc("GET /api/athletes/{id}/history", MetricsMiddleware(s.handleHistory, "athlete_history"))
	mux.HandleFunc("/api/login", MetricsMiddleware(s.handleLogin, "login"))

	mux.HandleFunc("/api/athletes", MetricsMiddleware(RequireAdmin(s.deps, s.athletes.handle), "athletes"))
	mux.HandleFunc("/api/meets", MetricsMiddleware(RequireAdmin(s.deps, s.meets.handle), "meets"))
	mux.HandleFunc("/api/results", MetricsMiddleware(RequireAdmin(s.deps, s.results.handle), "results"))
	mux.HandleFunc("/api/coaches", MetricsMiddleware(RequireAdmin(s.deps, s.coaches.handle), "coaches"))

	mux.HandleFunc("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.HandleFunc("/health", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.handleStats, "stats"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
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

// writeFailure maps service and store errors onto HTTP statuses.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalid):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "invalid_reference", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrLoginDisabled):
		writeError(w, http.StatusForbidden, "login_disabled", err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", errors.New("invalid credentials"))
	default:
		s.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
	}
}

// parseID reads a positive integer id.
func parseID(op, raw string) (int64, error) {
	if raw == "" {
		return 0, NewKind(op, fmt.Errorf("%w: id parameter required", ErrBadRequest))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewKind(op, fmt.Errorf("%w: invalid id %q", ErrBadRequest, raw))
	}
	return id, nil
}

func decodeJSON(op string, w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
