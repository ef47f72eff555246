// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/posekit/internal/domain/catalog"
	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/internal/domain/pose"
)

// SessionsHandler handles exercise session lifecycle requests.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// createSessionRequest mirrors the schema for POST /sessions.
type createSessionRequest struct {
	UserID     string `json:"user_id"`
	ExerciseID string `json:"exercise_id"`
}

func (r createSessionRequest) validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(r.ExerciseID) == "":
		return errors.New("missing exercise_id")
	}
	return nil
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

// frameRequest mirrors the schema for POST /sessions/{id}/frames.
type frameRequest struct {
	Landmarks []model.Landmark `json:"landmarks"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandleCreate handles POST /sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	id, err := h.deps.StartSession(r.Context(), req.UserID, req.ExerciseID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownExercise) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusConflict, "conflict", err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: id})
}

type exercisesResponse struct {
	Exercises []catalog.Exercise `json:"exercises"`
}

// HandleExercises handles GET /exercises requests.
func (h *SessionsHandler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	exercises := h.deps.Exercises(r.Context())
	if exercises == nil {
		exercises = []catalog.Exercise{}
	}
	writeJSON(w, http.StatusOK, exercisesResponse{Exercises: exercises})
}

// HandleSession routes /sessions/{id} and its sub-resources.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleState(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.handleCancel(w, r, id)
	case sub == "frames" && r.Method == http.MethodPost:
		h.handleFrame(w, r, id)
	case sub == "finish" && r.Method == http.MethodPost:
		h.handleFinish(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handleFrame(w http.ResponseWriter, r *http.Request, id string) {
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if len(req.Landmarks) != pose.LandmarkCount {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: expected %d landmarks, got %d", ErrBadRequest, pose.LandmarkCount, len(req.Landmarks)))
		return
	}

	if ok := h.deps.SubmitFrame(r.Context(), model.Frame{SessionID: id, Landmarks: req.Landmarks}); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

func (h *SessionsHandler) handleFinish(w http.ResponseWriter, r *http.Request, id string) {
	result, ok := h.deps.FinishSession(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", errors.New("unknown session"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SessionsHandler) handleCancel(w http.ResponseWriter, r *http.Request, id string) {
	if ok := h.deps.CancelSession(r.Context(), id); !ok {
		writeError(w, http.StatusNotFound, "not_found", errors.New("unknown session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) handleState(w http.ResponseWriter, r *http.Request, id string) {
	state, ok := h.deps.SessionState(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", errors.New("unknown session"))
		return
	}
	writeJSON(w, http.StatusOK, state)
}
