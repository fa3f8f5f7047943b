package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nusakalaAPI/internal/types/streak"
)

// StreakStore persists one UserStreak per user.
type StreakStore interface {
	Get(ctx context.Context, userID string) (*streak.UserStreak, error)
	Ensure(ctx context.Context, userID string) (*streak.UserStreak, error)
	// Update runs fn on the locked record and writes the result back.
	Update(ctx context.Context, userID string, fn func(rec *streak.UserStreak) error) (*streak.UserStreak, error)
	Leaderboard(ctx context.Context, limit int) ([]*streak.UserStreak, error)
	Count(ctx context.Context) (int, error)
	RecomputeRanks(ctx context.Context) (int64, error)
}

type PgStreakStore struct {
	db *pgxpool.Pool
}

func NewPgStreakStore(db *pgxpool.Pool) *PgStreakStore {
	return &PgStreakStore{db: db}
}

const streakColumns = `
	s.user_id, COALESCE(u.username, ''), u.image_url,
	s.current_streak, s.longest_streak, s.total_points,
	s.correct_answers, s.total_answers, s.last_active_date,
	s.rank, s.updated_at`

func scanStreak(row pgx.Row) (*streak.UserStreak, error) {
	rec := &streak.UserStreak{}
	err := row.Scan(
		&rec.UserID,
		&rec.Username,
		&rec.Avatar,
		&rec.CurrentStreak,
		&rec.LongestStreak,
		&rec.TotalPoints,
		&rec.CorrectAnswers,
		&rec.TotalAnswers,
		&rec.LastActiveDate,
		&rec.Rank,
		&rec.UpdatedAt,
	)
	return rec, err
}

func (s *PgStreakStore) Get(ctx context.Context, userID string) (*streak.UserStreak, error) {
	query := `SELECT` + streakColumns + `
	FROM user_streaks s
	LEFT JOIN users u ON u.clerk_id = s.user_id
	WHERE s.user_id = $1`

	rec, err := scanStreak(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return rec, nil
}

func (s *PgStreakStore) Ensure(ctx context.Context, userID string) (*streak.UserStreak, error) {
	_, err := s.db.Exec(ctx, `
	INSERT INTO user_streaks (user_id) VALUES ($1)
	ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create streak: %w", err)
	}
	return s.Get(ctx, userID)
}

func (s *PgStreakStore) Update(ctx context.Context, userID string, fn func(rec *streak.UserStreak) error) (*streak.UserStreak, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
	INSERT INTO user_streaks (user_id) VALUES ($1)
	ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create streak: %w", err)
	}

	query := `SELECT` + streakColumns + `
	FROM user_streaks s
	LEFT JOIN users u ON u.clerk_id = s.user_id
	WHERE s.user_id = $1
	FOR UPDATE OF s`

	rec, err := scanStreak(tx.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock streak: %w", err)
	}

	if err := fn(rec); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
	UPDATE user_streaks
	SET current_streak = $2,
		longest_streak = $3,
		total_points = $4,
		correct_answers = $5,
		total_answers = $6,
		last_active_date = $7,
		updated_at = NOW()
	WHERE user_id = $1
	RETURNING updated_at`,
		rec.UserID,
		rec.CurrentStreak,
		rec.LongestStreak,
		rec.TotalPoints,
		rec.CorrectAnswers,
		rec.TotalAnswers,
		rec.LastActiveDate,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit streak: %w", err)
	}
	return rec, nil
}

func (s *PgStreakStore) Leaderboard(ctx context.Context, limit int) ([]*streak.UserStreak, error) {
	query := `
	SELECT
		s.user_id, COALESCE(u.username, ''), u.image_url,
		s.current_streak, s.longest_streak, s.total_points,
		s.correct_answers, s.total_answers, s.last_active_date,
		RANK() OVER (ORDER BY s.total_points DESC, s.current_streak DESC)::int AS rank,
		s.updated_at
	FROM user_streaks s
	LEFT JOIN users u ON u.clerk_id = s.user_id
	ORDER BY s.total_points DESC, s.current_streak DESC, s.user_id
	LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*streak.UserStreak{}
	for rows.Next() {
		rec, err := scanStreak(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, rec)
	}
	return entries, rows.Err()
}

func (s *PgStreakStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_streaks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count streaks: %w", err)
	}
	return n, nil
}

func (s *PgStreakStore) RecomputeRanks(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `
	UPDATE user_streaks s
	SET rank = r.rank
	FROM (
		SELECT user_id, RANK() OVER (ORDER BY total_points DESC, current_streak DESC) AS rank
		FROM user_streaks
	) r
	WHERE s.user_id = r.user_id AND s.rank IS DISTINCT FROM r.rank`)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute ranks: %w", err)
	}
	return tag.RowsAffected(), nil
}
