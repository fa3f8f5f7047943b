package handlers

import (
	"context"
	"net/http"
	"time"

	"nusakalaAPI/internal/types/translation"
	"nusakalaAPI/middleware"
	"nusakalaAPI/services"
)

type TranslationHandler struct {
	translationService *services.TranslationService
}

func NewTranslationHandler(translationService *services.TranslationService) *TranslationHandler {
	return &TranslationHandler{
		translationService: translationService,
	}
}

func (h *TranslationHandler) Translate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req translation.TranslateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.translationService.Translate(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, "Translate", err)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

func (h *TranslationHandler) Languages(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.translationService.Languages())
}

func (h *TranslationHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entries, err := h.translationService.History(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "TranslationHistory", err)
		return
	}
	if entries == nil {
		entries = []*translation.HistoryEntry{}
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *TranslationHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.translationService.ClearHistory(ctx, clerkID); err != nil {
		respondWithServiceError(w, "ClearTranslationHistory", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
