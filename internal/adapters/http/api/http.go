// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/formlab/motionscore/internal/app"
	"github.com/formlab/motionscore/internal/domain/motion"
	"github.com/formlab/motionscore/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// SubmitScore scores one submission and records the result.
	SubmitScore(ctx context.Context, sub service.Submission) (service.Result, error)

	// Read operations expose persisted score data.
	Best(ctx context.Context, userID, difficulty string) (types.Entry, error)
	History(ctx context.Context, userID, difficulty string, limit int) ([]types.Record, error)
	TopN(ctx context.Context, difficulty string, n int) ([]types.Entry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	scoreHandler       *ScoreHandler
	bestHandler        *BestHandler
	historyHandler     *HistoryHandler
	leaderboardHandler *LeaderboardHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		scoreHandler:       NewScoreHandler(deps),
		bestHandler:        NewBestHandler(deps),
		historyHandler:     NewHistoryHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/score", MetricsMiddleware(s.scoreHandler.HandlePostScore, "score"))
	mux.HandleFunc("/best/", MetricsMiddleware(s.bestHandler.HandleGetBest, "best"))
	mux.HandleFunc("/history/", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

// scoreRequest mirrors the request schema for POST /score. Frames are
// arrays of [x, y, z] triples, one per joint.
type scoreRequest struct {
	UserID               string            `json:"user_id"`
	ReferencePoses       motion.Sequence   `json:"reference_poses"`
	UserPoses            motion.Sequence   `json:"user_poses"`
	VisibilityMatrix     motion.Visibility `json:"visibility_matrix"`
	UserVisibilityMatrix motion.Visibility `json:"user_visibility_matrix"`
	DifficultyLevel      string            `json:"difficulty_level"`
}

func (r scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return errors.New("missing user_id")
	case len(r.ReferencePoses) == 0:
		return errors.New("missing reference_poses")
	case len(r.UserPoses) == 0:
		return errors.New("missing user_poses")
	case strings.TrimSpace(r.DifficultyLevel) == "":
		return errors.New("missing difficulty_level")
	}
	return nil
}

// scoreResponse mirrors the response schema for POST /score.
type scoreResponse struct {
	Score     float64 `json:"score"`
	BestScore float64 `json:"bestScore"`
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

// writeServiceError translates service-layer sentinel kinds to HTTP
// statuses: validation kinds to 400, unknown users to 404, anything else
// (store failures included) to 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case isValidation(err):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
