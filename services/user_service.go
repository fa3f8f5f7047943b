package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nusakalaAPI/internal/types/streak"
	"nusakalaAPI/internal/user"
)

type ProfileStore interface {
	Upsert(ctx context.Context, req *user.UpsertProfileRequest) (*user.Profile, error)
	Get(ctx context.Context, clerkID string) (*user.Profile, error)
	Delete(ctx context.Context, clerkID string) error
}

type PgProfileStore struct {
	db *pgxpool.Pool
}

func NewPgProfileStore(db *pgxpool.Pool) *PgProfileStore {
	return &PgProfileStore{db: db}
}

func scanProfile(row pgx.Row) (*user.Profile, error) {
	p := &user.Profile{}
	err := row.Scan(
		&p.ClerkID,
		&p.Email,
		&p.Username,
		&p.FirstName,
		&p.LastName,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (s *PgProfileStore) Upsert(ctx context.Context, req *user.UpsertProfileRequest) (*user.Profile, error) {
	query := `
	INSERT INTO users (clerk_id, email, username, first_name, last_name, image_url)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
	ON CONFLICT (clerk_id) DO UPDATE SET
		email = EXCLUDED.email,
		username = EXCLUDED.username,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		image_url = EXCLUDED.image_url,
		updated_at = NOW()
	RETURNING clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at
	`

	p, err := scanProfile(s.db.QueryRow(ctx, query,
		req.ClerkID,
		req.Email,
		req.Username,
		req.FirstName,
		req.LastName,
		req.ImageURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return p, nil
}

func (s *PgProfileStore) Get(ctx context.Context, clerkID string) (*user.Profile, error) {
	query := `
	SELECT clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	p, err := scanProfile(s.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return p, nil
}

func (s *PgProfileStore) Delete(ctx context.Context, clerkID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

type UserService struct {
	profiles ProfileStore
	streaks  StreakStore
}

func NewUserService(profiles ProfileStore, streaks StreakStore) *UserService {
	return &UserService{profiles: profiles, streaks: streaks}
}

func (s *UserService) SyncProfile(ctx context.Context, req *user.UpsertProfileRequest) (*user.Profile, error) {
	if req.ClerkID == "" {
		return nil, fmt.Errorf("%w: clerk id is required", ErrInvalidInput)
	}
	p, err := s.profiles.Upsert(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Printf("User: synced profile %s (%s)", p.ClerkID, p.Username)
	return p, nil
}

func (s *UserService) DeleteProfile(ctx context.Context, clerkID string) error {
	return s.profiles.Delete(ctx, clerkID)
}

// GetProfile returns the profile with the user's trivia streak. Users who
// never played get a zeroed streak.
func (s *UserService) GetProfile(ctx context.Context, clerkID string) (*user.ProfileResponse, error) {
	p, err := s.profiles.Get(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rec, err := s.streaks.Get(ctx, clerkID)
	if errors.Is(err, ErrNotFound) {
		return &user.ProfileResponse{Profile: p, Streak: zeroStreak(p)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &user.ProfileResponse{Profile: p, Streak: rec}, nil
}

func zeroStreak(p *user.Profile) *streak.UserStreak {
	return &streak.UserStreak{UserID: p.ClerkID, Username: p.Username, Avatar: p.ImageURL}
}
