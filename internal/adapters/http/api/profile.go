// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/okian/posekit/internal/domain/model"
)

// ProfileHandler serves per-user reads: badges, history and session
// results.
type ProfileHandler struct {
	deps Dependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps Dependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

type badgesResponse struct {
	Badges []model.UserBadge `json:"badges"`
}

type historyResponse struct {
	Entries []model.HistoryEntry `json:"entries"`
}

type resultsResponse struct {
	Results []model.ExerciseResult `json:"results"`
}

// HandleBadges handles GET /badges?user_id= requests.
func (h *ProfileHandler) HandleBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, badgesResponse{Badges: h.deps.Badges(r.Context(), userID)})
}

// HandleHistory handles GET /history?user_id= requests.
func (h *ProfileHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	entries := h.deps.History(r.Context(), userID)
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries})
}

// HandleResults handles GET /results?user_id= requests.
func (h *ProfileHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	results := h.deps.Results(r.Context(), userID)
	if results == nil {
		results = []model.ExerciseResult{}
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}

func (h *ProfileHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return "", false
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing user_id"))
		return "", false
	}
	return userID, true
}
