// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// BestHandler handles best-score lookups.
type BestHandler struct {
	deps Dependencies
}

// NewBestHandler creates a new best-score handler.
func NewBestHandler(deps Dependencies) *BestHandler {
	return &BestHandler{deps: deps}
}

// HandleGetBest handles GET /best/{user_id}?difficulty= requests.
func (h *BestHandler) HandleGetBest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_best"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/best/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	difficulty := r.URL.Query().Get("difficulty")
	if difficulty == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Best(r.Context(), userID, difficulty)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
