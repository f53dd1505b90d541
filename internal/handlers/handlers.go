// Package handlers implements the HTTP API for the moderation engine.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"agora/internal/forum"
	"agora/internal/middleware"
	"agora/internal/moderation"

	"github.com/rs/zerolog/log"
)

// Handler contains all HTTP handler methods and their dependencies.
// Dependencies are injected via the constructor for better testability.
type Handler struct {
	forum      *forum.Service
	moderation *moderation.Service
}

// NewHandler creates a new Handler with all required dependencies.
// This constructor pattern ensures the Handler is always fully initialized.
func NewHandler(forumSvc *forum.Service, moderationSvc *moderation.Service) *Handler {
	return &Handler{
		forum:      forumSvc,
		moderation: moderationSvc,
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireActor returns the resolved actor or writes a 403 and returns nil.
func requireActor(w http.ResponseWriter, r *http.Request) *forum.User {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		writeError(w, forum.ErrForbidden("authentication required"))
		return nil
	}
	return actor
}

// decodeJSON parses the request body into dst; a failure writes a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, forum.ErrValidation("invalid JSON body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("handlers: failed to encode response")
	}
}

type errorResponse struct {
	Error             string     `json:"error"`
	Code              forum.Code `json:"code"`
	RetryAfterSeconds int        `json:"retry_after_seconds,omitempty"`
}

// writeError maps the engine error taxonomy onto HTTP statuses. Unclassified
// errors become opaque 500s so store internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var engineErr *forum.Error
	if !errors.As(err, &engineErr) {
		log.Error().Err(err).Msg("handlers: internal error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL"})
		return
	}

	status := http.StatusInternalServerError
	switch engineErr.Code {
	case forum.CodeForbidden:
		status = http.StatusForbidden
	case forum.CodeNotFound:
		status = http.StatusNotFound
	case forum.CodeRateLimited:
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", strconv.Itoa(engineErr.RetryAfterSeconds))
	case forum.CodeValidation:
		status = http.StatusBadRequest
	case forum.CodeConflict:
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{
		Error:             engineErr.Message,
		Code:              engineErr.Code,
		RetryAfterSeconds: engineErr.RetryAfterSeconds,
	})
}

// queryLimit parses the limit query parameter, 0 when absent or malformed.
func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
