package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sovereignhq/assistant/internal/models"
)

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var req CreateThreadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.state.CreateThread(r.Context(), req.AssistantID, req.Metadata)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}

	resp := toThreadResponse(result.Thread)
	resp.DefaultAssistant = result.ProvisionedDefault
	respondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.state.GetThread(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toThreadResponse(thread))
}

func (h *Handler) UpdateThread(w http.ResponseWriter, r *http.Request) {
	var req UpdateThreadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	thread, err := h.state.UpdateThread(r.Context(), chi.URLParam(r, "threadID"), req.Metadata)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toThreadResponse(thread))
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "threadID")
	if err := h.state.DeleteThread(r.Context(), id); err != nil {
		h.respondStateError(w, r, err)
		return
	}
	h.logger.Info("thread deleted via api", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	threads, err := h.state.ListThreads(r.Context(), r.URL.Query().Get("assistant_id"), offset, limit)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}

	resp := make([]ThreadResponse, 0, len(threads))
	for i := range threads {
		resp = append(resp, toThreadResponse(&threads[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := h.state.AddMessage(r.Context(), chi.URLParam(r, "threadID"), models.Role(req.Role), req.Content)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	messages, err := h.state.ListMessages(r.Context(), chi.URLParam(r, "threadID"), offset, limit)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, toMessageResponse(&messages[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetContext returns the ordered {role, content} history a generation
// consumer would receive.
func (h *Handler) GetContext(w http.ResponseWriter, r *http.Request) {
	history, err := h.window.Load(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// PruneThread trims a thread to the retention window. The caller may override
// keep_count per request; otherwise the configured window applies.
func (h *Handler) PruneThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	keep := h.window.KeepCount()
	if r.Body != nil && r.ContentLength != 0 {
		var req PruneRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.KeepCount != nil {
			keep = *req.KeepCount
		}
	}

	deleted, err := h.state.PruneMessages(r.Context(), threadID, keep)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, PruneResponse{ThreadID: threadID, Deleted: deleted, Kept: keep})
}
