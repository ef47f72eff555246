// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/posekit/internal/domain/model"
)

// AnalysesHandler handles posture analysis submissions.
type AnalysesHandler struct {
	deps Dependencies
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(deps Dependencies) *AnalysesHandler {
	return &AnalysesHandler{deps: deps}
}

// analysisRequest mirrors the schema for POST /analyses.
type analysisRequest struct {
	UserID string               `json:"user_id"`
	Items  []model.AnalysisItem `json:"items"`
}

func (r analysisRequest) validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("missing user_id")
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item.ID) == "" {
			return errors.New("item with empty id")
		}
	}
	return nil
}

// HandlePostAnalysis handles POST /analyses requests.
func (h *AnalysesHandler) HandlePostAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	outcome, err := h.deps.SubmitAnalysis(r.Context(), req.UserID, req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
