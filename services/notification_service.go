package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"nusakalaAPI/internal/notification"
)

var devicePlatforms = map[string]bool{"ios": true, "android": true, "web": true}

type DeviceStore interface {
	Register(ctx context.Context, userID, token, platform string) error
	Tokens(ctx context.Context, userID string) ([]notification.DeviceToken, error)
}

// PushProvider delivers a push to a set of devices.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, push notification.Push) error
}

type PgDeviceStore struct {
	db *pgxpool.Pool
}

func NewPgDeviceStore(db *pgxpool.Pool) *PgDeviceStore {
	return &PgDeviceStore{db: db}
}

// Register moves a token to userID if another account used it before.
func (s *PgDeviceStore) Register(ctx context.Context, userID, token, platform string) error {
	query := `
	INSERT INTO device_tokens (token, user_id, platform)
	VALUES ($1, $2, $3)
	ON CONFLICT (token) DO UPDATE SET
		user_id = EXCLUDED.user_id,
		platform = EXCLUDED.platform,
		last_used = NOW()
	`
	if _, err := s.db.Exec(ctx, query, token, userID, platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *PgDeviceStore) Tokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
	SELECT token, platform, added_at, last_used
	FROM device_tokens
	WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform, &t.AddedAt, &t.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

type NotificationService struct {
	devices DeviceStore
	push    PushProvider
}

// NewNotificationService builds the service. With a nil push provider
// devices are still registered but nothing is sent.
func NewNotificationService(devices DeviceStore, push PushProvider) *NotificationService {
	return &NotificationService{devices: devices, push: push}
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID string, req *notification.RegisterDeviceRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if !devicePlatforms[platform] {
		return fmt.Errorf("%w: platform must be ios, android or web", ErrInvalidInput)
	}
	return s.devices.Register(ctx, userID, token, platform)
}

func (s *NotificationService) NotifyStreakMilestone(ctx context.Context, userID string, days int) error {
	if s.push == nil {
		return nil
	}

	tokens, err := s.devices.Tokens(ctx, userID)
	if err != nil {
		return err
	}

	push := notification.Push{
		Type:  notification.NotificationStreakMilestone,
		Title: fmt.Sprintf("🔥 %d hari beruntun!", days),
		Body:  fmt.Sprintf("Kamu menjawab trivia NusaKala dengan benar %d hari berturut-turut. Pertahankan!", days),
		Data: map[string]any{
			"days":   days,
			"screen": "trivia",
		},
	}
	return s.push.SendPush(ctx, tokens, push)
}
