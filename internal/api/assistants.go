package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sovereignhq/assistant/internal/state"
)

func (h *Handler) CreateAssistant(w http.ResponseWriter, r *http.Request) {
	var req CreateAssistantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	assistant, err := h.state.CreateAssistant(r.Context(), req.Name, req.Instructions, req.Model)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAssistantResponse(assistant))
}

func (h *Handler) GetAssistant(w http.ResponseWriter, r *http.Request) {
	assistant, err := h.state.GetAssistant(r.Context(), chi.URLParam(r, "assistantID"))
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssistantResponse(assistant))
}

func (h *Handler) UpdateAssistant(w http.ResponseWriter, r *http.Request) {
	var req UpdateAssistantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	assistant, err := h.state.UpdateAssistant(r.Context(), chi.URLParam(r, "assistantID"),
		state.UpdateAssistantParams{
			Name:         req.Name,
			Instructions: req.Instructions,
			Model:        req.Model,
		})
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssistantResponse(assistant))
}

func (h *Handler) DeleteAssistant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "assistantID")
	if err := h.state.DeleteAssistant(r.Context(), id); err != nil {
		h.respondStateError(w, r, err)
		return
	}
	h.logger.Info("assistant deleted via api", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAssistants(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	assistants, err := h.state.ListAssistants(r.Context(), offset, limit)
	if err != nil {
		h.respondStateError(w, r, err)
		return
	}

	resp := make([]AssistantResponse, 0, len(assistants))
	for i := range assistants {
		resp = append(resp, toAssistantResponse(&assistants[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}
