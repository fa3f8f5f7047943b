package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"nusakalaAPI/internal/types/translation"
)

const (
	translationHistoryKeyPrefix = "translate:history:"
	TranslationHistoryLimit     = 50
)

// TranslationHistoryStore keeps the newest translations of each user.
type TranslationHistoryStore interface {
	Push(ctx context.Context, userID string, entry *translation.HistoryEntry) error
	List(ctx context.Context, userID string) ([]*translation.HistoryEntry, error)
	Clear(ctx context.Context, userID string) error
}

type RedisTranslationHistory struct {
	client *redis.Client
}

func NewRedisTranslationHistory(client *redis.Client) *RedisTranslationHistory {
	return &RedisTranslationHistory{client: client}
}

func (r *RedisTranslationHistory) Push(ctx context.Context, userID string, entry *translation.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := translationHistoryKeyPrefix + userID
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, TranslationHistoryLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push translation history: %w", err)
	}
	return nil
}

func (r *RedisTranslationHistory) List(ctx context.Context, userID string) ([]*translation.HistoryEntry, error) {
	items, err := r.client.LRange(ctx, translationHistoryKeyPrefix+userID, 0, TranslationHistoryLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read translation history: %w", err)
	}

	entries := make([]*translation.HistoryEntry, 0, len(items))
	for _, item := range items {
		var e translation.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

func (r *RedisTranslationHistory) Clear(ctx context.Context, userID string) error {
	return r.client.Del(ctx, translationHistoryKeyPrefix+userID).Err()
}

type MemoryTranslationHistory struct {
	mu      sync.Mutex
	entries map[string][]*translation.HistoryEntry
}

func NewMemoryTranslationHistory() *MemoryTranslationHistory {
	return &MemoryTranslationHistory{entries: make(map[string][]*translation.HistoryEntry)}
}

func (m *MemoryTranslationHistory) Push(_ context.Context, userID string, entry *translation.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append([]*translation.HistoryEntry{entry}, m.entries[userID]...)
	if len(list) > TranslationHistoryLimit {
		list = list[:TranslationHistoryLimit]
	}
	m.entries[userID] = list
	return nil
}

func (m *MemoryTranslationHistory) List(_ context.Context, userID string) ([]*translation.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*translation.HistoryEntry, len(m.entries[userID]))
	copy(out, m.entries[userID])
	return out, nil
}

func (m *MemoryTranslationHistory) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, userID)
	return nil
}
