// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	service "github.com/formlab/motionscore/internal/app"
)

// ScoreHandler handles scoring submissions.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandlePostScore handles POST /score requests.
//
// A missing visibility matrix means the capture is treated as fully
// visible; the engine substitutes an all-ones matrix.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.SubmitScore(r.Context(), service.Submission{
		UserID:              req.UserID,
		Reference:           req.ReferencePoses,
		User:                req.UserPoses,
		ReferenceVisibility: req.VisibilityMatrix,
		UserVisibility:      req.UserVisibilityMatrix,
		Difficulty:          req.DifficultyLevel,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Score: result.Score, BestScore: result.BestScore})
}
