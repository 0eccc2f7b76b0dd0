package api

import (
	"net/http"

	"github.com/okian/stride/internal/domain/types"
)

// handleRankings handles GET /api/rankings.
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.rankings"
	lb, err := s.deps.Leaderboards(r.Context())
	if err != nil {
		s.writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewRankingsResponse(lb, s.deps.Categories()))
}

// handleMeetDetail handles GET /api/meets/{id}/results.
func (s *Server) handleMeetDetail(w http.ResponseWriter, r *http.Request) {
	const op = "api.meet_detail"
	id, err := parseID(op, r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	meet, tables, err := s.deps.MeetDetail(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewMeetDetailResponse(meet, tables, s.deps.Categories()))
}

// handleHistory handles GET /api/athletes/{id}/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.athlete_history"
	id, err := parseID(op, r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	h, err := s.deps.AthleteHistory(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewHistoryResponse(h.Athlete, h.Rows, h.Best, h.HasBest))
}

// handleLogin handles POST /api/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req types.LoginRequest
	if err := decodeJSON(op, w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	token, claims, err := s.deps.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Unix()})
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleHealth handles GET /healthz by pinging the store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "connected"})
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	stats, err := s.deps.GetStats(r.Context())
	if err != nil {
		s.writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
