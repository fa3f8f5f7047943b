package services

import (
	"context"
	"sync"
	"time"

	"nusakalaAPI/internal/trivia"
	"nusakalaAPI/internal/types/streak"
)

// MemoryStreakStore is an in-process StreakStore. The whole map is guarded
// by one mutex, so Update is serialised across users.
type MemoryStreakStore struct {
	mu      sync.Mutex
	records map[string]*streak.UserStreak
}

func NewMemoryStreakStore() *MemoryStreakStore {
	return &MemoryStreakStore{records: make(map[string]*streak.UserStreak)}
}

func (m *MemoryStreakStore) Get(_ context.Context, userID string) (*streak.UserStreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStreakStore) Ensure(_ context.Context, userID string) (*streak.UserStreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *m.ensureLocked(userID)
	return &cp, nil
}

func (m *MemoryStreakStore) ensureLocked(userID string) *streak.UserStreak {
	rec, ok := m.records[userID]
	if !ok {
		rec = &streak.UserStreak{UserID: userID, UpdatedAt: time.Now()}
		m.records[userID] = rec
	}
	return rec
}

func (m *MemoryStreakStore) Update(_ context.Context, userID string, fn func(rec *streak.UserStreak) error) (*streak.UserStreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := *m.ensureLocked(userID)
	if err := fn(&work); err != nil {
		return nil, err
	}
	work.UpdatedAt = time.Now()
	m.records[userID] = &work

	cp := work
	return &cp, nil
}

func (m *MemoryStreakStore) Leaderboard(_ context.Context, limit int) ([]*streak.UserStreak, error) {
	m.mu.Lock()
	all := make([]*streak.UserStreak, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		all = append(all, &cp)
	}
	m.mu.Unlock()

	trivia.AssignRanks(all)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStreakStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *MemoryStreakStore) RecomputeRanks(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*streak.UserStreak, 0, len(m.records))
	for _, rec := range m.records {
		all = append(all, rec)
	}
	trivia.AssignRanks(all)
	return int64(len(all)), nil
}
