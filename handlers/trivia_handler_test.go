package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nusakalaAPI/internal/trivia"
	"nusakalaAPI/internal/types/leaderboard"
	"nusakalaAPI/internal/types/streak"
	"nusakalaAPI/services"
)

func newTestTriviaHandler(t *testing.T) (*TriviaHandler, *trivia.Bank) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	bank := trivia.DefaultBank()
	svc := services.NewTriviaService(
		services.NewMemoryStreakStore(),
		services.NewMemoryTriviaStatusStore(),
		bank, loc, nil,
	)
	return NewTriviaHandler(svc), bank
}

func submit(h *TriviaHandler, clerkID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trivia/answer", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.SubmitAnswer(rr, asUser(req, clerkID))
	return rr
}

func TestTriviaHandler_RequiresAuth(t *testing.T) {
	h, _ := newTestTriviaHandler(t)

	rr := httptest.NewRecorder()
	h.GetToday(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trivia/today", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTriviaHandler_TodayThenAnswer(t *testing.T) {
	h, bank := newTestTriviaHandler(t)

	rr := httptest.NewRecorder()
	h.GetToday(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/trivia/today", nil), "user_a"))
	require.Equal(t, http.StatusOK, rr.Code)

	var today services.TodayTrivia
	decodeBody(t, rr, &today)
	assert.True(t, today.Status.HasSeenToday)
	assert.False(t, today.Status.HasAnsweredToday)
	assert.NotContains(t, rr.Body.String(), "explanation")

	q, ok := bank.ByID(today.Question.ID)
	require.True(t, ok)

	rr = submit(h, "user_a", fmt.Sprintf(`{"questionId": %q, "choice": %d}`, q.ID, q.Answer))
	require.Equal(t, http.StatusOK, rr.Code)

	var result services.AnswerResult
	decodeBody(t, rr, &result)
	assert.True(t, result.Correct)
	assert.Equal(t, q.Points(), result.PointsAwarded)
	assert.Equal(t, 1, result.Streak.CurrentStreak)

	rr = submit(h, "user_a", fmt.Sprintf(`{"questionId": %q, "choice": %d}`, q.ID, q.Answer))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	h.GetStreak(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/trivia/streak", nil), "user_a"))
	require.Equal(t, http.StatusOK, rr.Code)

	var rec streak.UserStreak
	decodeBody(t, rr, &rec)
	assert.Equal(t, q.Points(), rec.TotalPoints)
}

func TestTriviaHandler_SubmitValidation(t *testing.T) {
	h, _ := newTestTriviaHandler(t)

	rr := submit(h, "user_a", `{"questionId": "q1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "questionId and choice are required", errorMessage(t, rr))

	rr = submit(h, "user_a", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = submit(h, "user_a", `{"questionId": "not-today", "choice": 0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.ErrWrongQuestion.Error(), errorMessage(t, rr))
}

func TestTriviaHandler_LeaderboardIsPublic(t *testing.T) {
	h, _ := newTestTriviaHandler(t)

	rr := httptest.NewRecorder()
	h.GetLeaderboard(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trivia/leaderboard?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var board leaderboard.Leaderboard
	decodeBody(t, rr, &board)
	assert.Equal(t, 0, board.TotalUsers)
	assert.Nil(t, board.UserPosition)
}
