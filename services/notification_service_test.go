package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nusakalaAPI/internal/notification"
)

type memoryDevices struct {
	tokens map[string][]notification.DeviceToken
}

func (m *memoryDevices) Register(_ context.Context, userID, token, platform string) error {
	if m.tokens == nil {
		m.tokens = map[string][]notification.DeviceToken{}
	}
	m.tokens[userID] = append(m.tokens[userID], notification.DeviceToken{Token: token, Platform: platform})
	return nil
}

func (m *memoryDevices) Tokens(_ context.Context, userID string) ([]notification.DeviceToken, error) {
	return m.tokens[userID], nil
}

type recordingPush struct {
	tokens []notification.DeviceToken
	push   notification.Push
}

func (r *recordingPush) SendPush(_ context.Context, tokens []notification.DeviceToken, push notification.Push) error {
	r.tokens = tokens
	r.push = push
	return nil
}

func TestRegisterDevice_Validation(t *testing.T) {
	svc := NewNotificationService(&memoryDevices{}, nil)
	ctx := context.Background()

	err := svc.RegisterDevice(ctx, "u", &notification.RegisterDeviceRequest{Token: "", Platform: "ios"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.RegisterDevice(ctx, "u", &notification.RegisterDeviceRequest{Token: "abc", Platform: "symbian"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.NoError(t, svc.RegisterDevice(ctx, "u", &notification.RegisterDeviceRequest{Token: "abc", Platform: "Android"}))
}

func TestNotifyStreakMilestone(t *testing.T) {
	devices := &memoryDevices{}
	push := &recordingPush{}
	svc := NewNotificationService(devices, push)
	ctx := context.Background()

	require.NoError(t, svc.RegisterDevice(ctx, "u", &notification.RegisterDeviceRequest{Token: "tok-1", Platform: "android"}))
	require.NoError(t, svc.NotifyStreakMilestone(ctx, "u", 7))

	require.Len(t, push.tokens, 1)
	assert.Equal(t, "android", push.tokens[0].Platform)
	assert.Equal(t, notification.NotificationStreakMilestone, push.push.Type)
	assert.Contains(t, push.push.Title, "7")
	assert.Equal(t, 7, push.push.Data["days"])
}

func TestNotifyStreakMilestone_NoProvider(t *testing.T) {
	svc := NewNotificationService(&memoryDevices{}, nil)
	assert.NoError(t, svc.NotifyStreakMilestone(context.Background(), "u", 3))
}
