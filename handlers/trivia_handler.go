package handlers

import (
	"context"
	"net/http"
	"time"

	"nusakalaAPI/middleware"
	"nusakalaAPI/services"
)

type TriviaHandler struct {
	triviaService *services.TriviaService
}

func NewTriviaHandler(triviaService *services.TriviaService) *TriviaHandler {
	return &TriviaHandler{
		triviaService: triviaService,
	}
}

func (h *TriviaHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	today, err := h.triviaService.GetToday(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "GetToday", err)
		return
	}

	respondWithJSON(w, http.StatusOK, today)
}

func (h *TriviaHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		QuestionID string `json:"questionId"`
		Choice     *int   `json:"choice"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.QuestionID == "" || req.Choice == nil {
		respondWithError(w, http.StatusBadRequest, "questionId and choice are required")
		return
	}

	result, err := h.triviaService.SubmitAnswer(ctx, clerkID, req.QuestionID, *req.Choice)
	if err != nil {
		respondWithServiceError(w, "SubmitAnswer", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *TriviaHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	rec, err := h.triviaService.GetStreak(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "GetStreak", err)
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

func (h *TriviaHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	status, err := h.triviaService.GetStatus(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "GetStatus", err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// GetLeaderboard is public. Signed in callers also get their own position.
func (h *TriviaHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, _ := middleware.GetClerkID(ctx)
	limit := queryInt(r, "limit", services.DefaultLeaderboardLimit)

	board, err := h.triviaService.Leaderboard(ctx, clerkID, limit)
	if err != nil {
		respondWithServiceError(w, "GetLeaderboard", err)
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}
