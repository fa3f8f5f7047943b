package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nusakalaAPI/internal/testutil"
	"nusakalaAPI/internal/user"
	"nusakalaAPI/services"
)

type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]*user.Profile
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{profiles: make(map[string]*user.Profile)}
}

func (m *memoryProfiles) Upsert(_ context.Context, req *user.UpsertProfileRequest) (*user.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &user.Profile{
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.ImageURL != "" {
		p.ImageURL = &req.ImageURL
	}
	m.profiles[req.ClerkID] = p
	return p, nil
}

func (m *memoryProfiles) Get(_ context.Context, clerkID string) (*user.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[clerkID]
	if !ok {
		return nil, services.ErrNotFound
	}
	return p, nil
}

func (m *memoryProfiles) Delete(_ context.Context, clerkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, clerkID)
	return nil
}

var testWebhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("super-secret-signing-key"))

func newTestWebhookHandler() (*WebhookHandler, *memoryProfiles) {
	profiles := newMemoryProfiles()
	svc := services.NewUserService(profiles, services.NewMemoryStreakStore())
	return NewWebhookHandler(svc, testWebhookSecret), profiles
}

func deliver(h *WebhookHandler, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.HandleClerkWebhook(rr, req)
	return rr
}

func TestWebhook_UserLifecycle(t *testing.T) {
	h, profiles := newTestWebhookHandler()
	clerkID := testutil.NewClerkID("webhook")

	body := testutil.MockClerkWebhookPayload("user.created", clerkID)
	rr := deliver(h, body, testutil.SvixHeaders(testWebhookSecret, "msg_1", time.Now(), body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	p, err := profiles.Get(context.Background(), clerkID)
	require.NoError(t, err)
	assert.Equal(t, "test.user@example.com", p.Email)
	assert.Equal(t, "Test User", p.Username)

	body = testutil.MockClerkWebhookPayload("user.updated", clerkID)
	rr = deliver(h, body, testutil.SvixHeaders(testWebhookSecret, "msg_2", time.Now(), body))
	require.Equal(t, http.StatusOK, rr.Code)

	p, err = profiles.Get(context.Background(), clerkID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", p.FirstName)

	body = testutil.MockClerkWebhookPayload("user.deleted", clerkID)
	rr = deliver(h, body, testutil.SvixHeaders(testWebhookSecret, "msg_3", time.Now(), body))
	require.Equal(t, http.StatusOK, rr.Code)

	_, err = profiles.Get(context.Background(), clerkID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestWebhook_RejectsBadSignatures(t *testing.T) {
	h, profiles := newTestWebhookHandler()
	clerkID := testutil.NewClerkID("forged")
	body := testutil.MockClerkWebhookPayload("user.created", clerkID)

	otherSecret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("someone-else"))

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing headers", nil},
		{"wrong secret", testutil.SvixHeaders(otherSecret, "msg_1", time.Now(), body)},
		{"stale timestamp", testutil.SvixHeaders(testWebhookSecret, "msg_1", time.Now().Add(-10*time.Minute), body)},
		{"tampered body", testutil.SvixHeaders(testWebhookSecret, "msg_1", time.Now(), []byte(`{"type":"user.deleted"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := deliver(h, body, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}

	_, err := profiles.Get(context.Background(), clerkID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestWebhook_AcceptsAnyListedSignature(t *testing.T) {
	h, _ := newTestWebhookHandler()
	body := testutil.MockClerkWebhookPayload("user.created", testutil.NewClerkID("rotated"))

	headers := testutil.SvixHeaders(testWebhookSecret, "msg_9", time.Now(), body)
	headers["svix-signature"] = "v1,Zm9yZ2Vk " + headers["svix-signature"]

	rr := deliver(h, body, headers)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhook_UnknownEventIsAcknowledged(t *testing.T) {
	h, _ := newTestWebhookHandler()
	h.secret = ""

	rr := deliver(h, testutil.MockClerkWebhookPayload("session.created", "x"), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success": true}`, rr.Body.String())
}
