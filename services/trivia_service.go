package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"nusakalaAPI/internal/metrics"
	"nusakalaAPI/internal/trivia"
	"nusakalaAPI/internal/types/leaderboard"
	"nusakalaAPI/internal/types/streak"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// StreakNotifier is told when a correct answer lands a streak on a milestone.
type StreakNotifier interface {
	NotifyStreakMilestone(ctx context.Context, userID string, days int) error
}

type TriviaService struct {
	streaks  StreakStore
	statuses TriviaStatusStore
	bank     *trivia.Bank
	loc      *time.Location
	notifier StreakNotifier
	now      func() time.Time
}

func NewTriviaService(streaks StreakStore, statuses TriviaStatusStore, bank *trivia.Bank, loc *time.Location, notifier StreakNotifier) *TriviaService {
	return &TriviaService{
		streaks:  streaks,
		statuses: statuses,
		bank:     bank,
		loc:      loc,
		notifier: notifier,
		now:      time.Now,
	}
}

type TodayTrivia struct {
	Date     string                `json:"date"`
	Question trivia.PublicQuestion `json:"question"`
	Status   *streak.TriviaStatus  `json:"status"`
	Streak   *streak.UserStreak    `json:"streak"`
}

type AnswerResult struct {
	Correct       bool               `json:"correct"`
	CorrectIndex  int                `json:"correctIndex"`
	Explanation   string             `json:"explanation"`
	PointsAwarded int                `json:"pointsAwarded"`
	Milestone     bool               `json:"milestone"`
	Streak        *streak.UserStreak `json:"streak"`
}

func (s *TriviaService) today() string {
	return trivia.DateString(s.now(), s.loc)
}

func (s *TriviaService) statusFor(ctx context.Context, userID, date string) (*streak.TriviaStatus, error) {
	status, err := s.statuses.GetStatus(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if status == nil {
		status = &streak.TriviaStatus{UserID: userID, Date: date}
	}
	return status, nil
}

// GetToday returns today's question and marks it as seen. The streak record
// is created on the first visit.
func (s *TriviaService) GetToday(ctx context.Context, userID string) (*TodayTrivia, error) {
	date := s.today()
	q := s.bank.Daily(date)

	rec, err := s.streaks.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	status, err := s.statusFor(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	if !status.HasSeenToday {
		status.HasSeenToday = true
		id := q.ID
		status.TriviaID = &id
		if err := s.statuses.SaveStatus(ctx, status); err != nil {
			return nil, err
		}
	}

	return &TodayTrivia{
		Date:     date,
		Question: q.Public(),
		Status:   status,
		Streak:   rec,
	}, nil
}

// SubmitAnswer scores the answer to today's question. Only the first answer
// of a day counts.
func (s *TriviaService) SubmitAnswer(ctx context.Context, userID, questionID string, choice int) (*AnswerResult, error) {
	date := s.today()
	q := s.bank.Daily(date)

	if questionID != q.ID {
		return nil, ErrWrongQuestion
	}
	if choice < 0 || choice >= len(q.Options) {
		return nil, ErrInvalidChoice
	}

	claimed, err := s.statuses.ClaimAnswer(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrAlreadyAnswered
	}

	correct := choice == q.Answer
	points := 0
	if correct {
		points = q.Points()
	}

	rec, err := s.streaks.Update(ctx, userID, func(rec *streak.UserStreak) error {
		return trivia.UpdateStreak(rec, correct, points, date)
	})
	if err != nil {
		if relErr := s.statuses.ReleaseAnswer(ctx, userID, date); relErr != nil {
			log.Printf("Trivia: failed to release answer lock for %s: %v", userID, relErr)
		}
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	status, err := s.statusFor(ctx, userID, date)
	if err != nil {
		log.Printf("Trivia: failed to read status for %s: %v", userID, err)
		status = &streak.TriviaStatus{UserID: userID, Date: date}
	}
	id := q.ID
	status.HasSeenToday = true
	status.HasAnsweredToday = true
	status.IsCorrect = &correct
	status.TriviaID = &id
	status.Points = &points
	if err := s.statuses.SaveStatus(ctx, status); err != nil {
		log.Printf("Trivia: failed to save status for %s: %v", userID, err)
	}

	result := "incorrect"
	if correct {
		result = "correct"
	}
	metrics.TriviaAnswers.WithLabelValues(result).Inc()

	milestone := correct && trivia.IsMilestone(rec.CurrentStreak)
	if milestone && s.notifier != nil {
		days := rec.CurrentStreak
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notifier.NotifyStreakMilestone(bgCtx, userID, days); err != nil {
				log.Printf("Trivia: milestone push for %s failed: %v", userID, err)
			}
		}()
	}

	return &AnswerResult{
		Correct:       correct,
		CorrectIndex:  q.Answer,
		Explanation:   q.Explanation,
		PointsAwarded: points,
		Milestone:     milestone,
		Streak:        rec,
	}, nil
}

// GetStreak returns the user's record, or a zeroed one if they never played.
func (s *TriviaService) GetStreak(ctx context.Context, userID string) (*streak.UserStreak, error) {
	rec, err := s.streaks.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &streak.UserStreak{UserID: userID}, nil
	}
	return rec, err
}

func (s *TriviaService) GetStatus(ctx context.Context, userID string) (*streak.TriviaStatus, error) {
	return s.statusFor(ctx, userID, s.today())
}

// Leaderboard returns the top players. When userID is set the caller's own
// standing is included.
func (s *TriviaService) Leaderboard(ctx context.Context, userID string, limit int) (*leaderboard.Leaderboard, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	entries, err := s.streaks.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.streaks.Count(ctx)
	if err != nil {
		return nil, err
	}

	board := &leaderboard.Leaderboard{Entries: entries, TotalUsers: total}

	if userID != "" {
		for _, e := range entries {
			if e.UserID == userID {
				board.UserPosition = e
				break
			}
		}
		if board.UserPosition == nil {
			rec, err := s.streaks.Get(ctx, userID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			board.UserPosition = rec
		}
	}

	return board, nil
}

func (s *TriviaService) RecomputeRanks(ctx context.Context) (int64, error) {
	return s.streaks.RecomputeRanks(ctx)
}
