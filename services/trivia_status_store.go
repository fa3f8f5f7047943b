package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"nusakalaAPI/internal/types/streak"
)

const (
	triviaStatusKeyPrefix = "trivia:status:"
	triviaLockKeyPrefix   = "trivia:answer-lock:"
	triviaStatusTTL       = 48 * time.Hour
)

// TriviaStatusStore keeps the per-day trivia marker of each user. Keys embed
// the day, so yesterday's marker never shadows today's.
type TriviaStatusStore interface {
	// GetStatus returns (nil, nil) when the user has no marker for date.
	GetStatus(ctx context.Context, userID, date string) (*streak.TriviaStatus, error)
	SaveStatus(ctx context.Context, status *streak.TriviaStatus) error
	// ClaimAnswer returns false if an answer for date was already claimed.
	ClaimAnswer(ctx context.Context, userID, date string) (bool, error)
	ReleaseAnswer(ctx context.Context, userID, date string) error
}

func triviaStatusKey(userID, date string) string {
	return triviaStatusKeyPrefix + userID + ":" + date
}

func triviaLockKey(userID, date string) string {
	return triviaLockKeyPrefix + userID + ":" + date
}

type RedisTriviaStatusStore struct {
	client *redis.Client
}

func NewRedisTriviaStatusStore(client *redis.Client) *RedisTriviaStatusStore {
	return &RedisTriviaStatusStore{client: client}
}

func (r *RedisTriviaStatusStore) GetStatus(ctx context.Context, userID, date string) (*streak.TriviaStatus, error) {
	data, err := r.client.Get(ctx, triviaStatusKey(userID, date)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trivia status: %w", err)
	}

	var status streak.TriviaStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to decode trivia status: %w", err)
	}
	return &status, nil
}

func (r *RedisTriviaStatusStore) SaveStatus(ctx context.Context, status *streak.TriviaStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	key := triviaStatusKey(status.UserID, status.Date)
	if err := r.client.Set(ctx, key, data, triviaStatusTTL).Err(); err != nil {
		return fmt.Errorf("failed to save trivia status: %w", err)
	}
	return nil
}

func (r *RedisTriviaStatusStore) ClaimAnswer(ctx context.Context, userID, date string) (bool, error) {
	ok, err := r.client.SetNX(ctx, triviaLockKey(userID, date), time.Now().Unix(), triviaStatusTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim trivia answer: %w", err)
	}
	return ok, nil
}

func (r *RedisTriviaStatusStore) ReleaseAnswer(ctx context.Context, userID, date string) error {
	return r.client.Del(ctx, triviaLockKey(userID, date)).Err()
}

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryTriviaStatusStore is the single-process fallback used when no
// REDIS_URL is configured.
type MemoryTriviaStatusStore struct {
	mu       sync.Mutex
	now      func() time.Time
	statuses map[string]memoryEntry[streak.TriviaStatus]
	locks    map[string]time.Time
}

func NewMemoryTriviaStatusStore() *MemoryTriviaStatusStore {
	return &MemoryTriviaStatusStore{
		now:      time.Now,
		statuses: make(map[string]memoryEntry[streak.TriviaStatus]),
		locks:    make(map[string]time.Time),
	}
}

func (m *MemoryTriviaStatusStore) GetStatus(_ context.Context, userID, date string) (*streak.TriviaStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := triviaStatusKey(userID, date)
	e, ok := m.statuses[key]
	if !ok {
		return nil, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.statuses, key)
		return nil, nil
	}
	status := e.value
	return &status, nil
}

func (m *MemoryTriviaStatusStore) SaveStatus(_ context.Context, status *streak.TriviaStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statuses[triviaStatusKey(status.UserID, status.Date)] = memoryEntry[streak.TriviaStatus]{
		value:     *status,
		expiresAt: m.now().Add(triviaStatusTTL),
	}
	return nil
}

func (m *MemoryTriviaStatusStore) ClaimAnswer(_ context.Context, userID, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := triviaLockKey(userID, date)
	if exp, ok := m.locks[key]; ok && m.now().Before(exp) {
		return false, nil
	}
	m.locks[key] = m.now().Add(triviaStatusTTL)
	return true, nil
}

func (m *MemoryTriviaStatusStore) ReleaseAnswer(_ context.Context, userID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.locks, triviaLockKey(userID, date))
	return nil
}
