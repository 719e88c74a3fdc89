// Package api translates HTTP requests into repository calls and repository
// errors into stable status codes: NotFound → 404, ValidationError → 400,
// IntegrityError → 409, anything else → 500.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sovereignhq/assistant/internal/inference"
	"github.com/sovereignhq/assistant/internal/state"
)

type Handler struct {
	state  *state.Manager
	window *state.ContextWindow
	engine inference.Engine
	logger *zap.Logger
}

func NewHandler(st *state.Manager, window *state.ContextWindow, engine inference.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		state:  st,
		window: window,
		engine: engine,
		logger: logger,
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondStateError maps a repository error to its HTTP status.
func (h *Handler) respondStateError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *state.ValidationError
		ie *state.IntegrityError
	)
	switch {
	case errors.Is(err, state.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &ie):
		respondError(w, http.StatusConflict, ie.Error())
	default:
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pageParams reads offset/limit from the query string. Missing or malformed
// values fall back to 0/100; the repository clamps further.
func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 100
	}
	return offset, limit
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := h.state.Ping(r.Context())
	latency := float64(time.Since(start).Microseconds()) / 1000

	resp := HealthResponse{Status: "healthy", Database: "healthy", LatencyMS: latency}
	code := http.StatusOK
	if err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, resp)
}
