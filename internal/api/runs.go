package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sovereignhq/assistant/internal/inference"
	"github.com/sovereignhq/assistant/internal/models"
)

// CreateRun executes inference on a thread: load the ordered context, hand it
// to the engine, persist the reply as an assistant message. An engine failure
// yields a run object with status "failed" rather than an HTTP error, so the
// caller can distinguish "your request was bad" from "generation failed".
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if !decodeBody(w, r, &req) {
		return
	}

	threadID := chi.URLParam(r, "threadID")
	run := RunResponse{
		ID:          uuid.NewString(),
		ThreadID:    threadID,
		AssistantID: req.AssistantID,
		CreatedAt:   time.Now().Unix(),
	}

	if _, err := h.state.GetThread(r.Context(), threadID); err != nil {
		h.respondStateError(w, r, err)
		return
	}
	assistant, err := h.state.GetAssistant(r.Context(), req.AssistantID)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}

	history, err := h.window.Load(r.Context(), threadID)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}

	if req.Stream {
		h.streamRun(w, r, history, assistant.Model)
		return
	}

	reply, err := h.engine.Generate(r.Context(), history, assistant.Model)
	if err != nil {
		h.logger.Error("inference failed",
			zap.Error(err),
			zap.String("run_id", run.ID),
			zap.String("thread_id", threadID))
		run.Status = "failed"
		run.LastError = err.Error()
		respondJSON(w, http.StatusOK, run)
		return
	}

	if _, err := h.state.AddMessage(r.Context(), threadID, models.RoleAssistant, reply); err != nil {
		h.respondStateError(w, r, err)
		return
	}

	run.Status = "completed"
	run.CompletedAt = time.Now().Unix()
	h.logger.Info("run completed",
		zap.String("run_id", run.ID),
		zap.String("thread_id", threadID),
		zap.Int("context_messages", len(history)))
	respondJSON(w, http.StatusOK, run)
}

// streamRun relays the reply as Server-Sent Events. Streamed replies are not
// persisted; the caller holds the only copy.
func (h *Handler) streamRun(w http.ResponseWriter, r *http.Request, history []models.ContextMessage, model string) {
	streamer, ok := h.engine.(inference.Streamer)
	if !ok {
		respondError(w, http.StatusBadRequest, "streaming not supported by the configured inference backend")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported by connection")
		return
	}

	chunks, err := streamer.GenerateStream(r.Context(), history, model)
	if err != nil {
		h.logger.Error("streaming inference failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "inference failed")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	for chunk := range chunks {
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
	}
}
