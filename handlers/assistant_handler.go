package handlers

import (
	"context"
	"net/http"
	"time"

	"nusakalaAPI/services"
)

type AssistantHandler struct {
	assistantService *services.AssistantService
}

func NewAssistantHandler(assistantService *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
	}
}

func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req services.AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.assistantService.Ask(ctx, &req)
	if err != nil {
		respondWithServiceError(w, "Ask", err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
