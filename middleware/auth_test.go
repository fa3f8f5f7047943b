package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClerkAuthMiddleware_RejectsMissingHeader(t *testing.T) {
	called := false
	handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trivia/today", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Authorization header required", body["error"])
}

func TestClerkAuthMiddleware_RejectsNonBearer(t *testing.T) {
	handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trivia/today", nil)
	req.Header.Set("Authorization", "Basic abc")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Bearer")
}

func TestOptionalAuthMiddleware_PassesAnonymous(t *testing.T) {
	var gotID bool
	handler := OptionalAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotID = GetClerkID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/community/posts", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, gotID)
}

func TestGetClerkID(t *testing.T) {
	ctx := WithClerkID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "user_123")
	id, ok := GetClerkID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user_123", id)
}

// stubVerifier accepts "good-<subject>" tokens.
func stubVerifier(t *testing.T) {
	t.Helper()
	orig := verifySessionToken
	verifySessionToken = func(_ context.Context, token string) (*clerk.SessionClaims, error) {
		subject, ok := strings.CutPrefix(token, "good-")
		if !ok {
			return nil, errors.New("signature mismatch")
		}
		claims := &clerk.SessionClaims{}
		claims.Subject = subject
		return claims, nil
	}
	t.Cleanup(func() { verifySessionToken = orig })
}

func TestClerkAuthMiddleware_Tokens(t *testing.T) {
	stubVerifier(t)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantID   string
	}{
		{"valid", "Bearer good-user_42", http.StatusOK, "user_42"},
		{"bad signature", "Bearer forged", http.StatusUnauthorized, ""},
		{"empty subject", "Bearer good-", http.StatusUnauthorized, ""},
		{"empty token", "Bearer  ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, _ = GetClerkID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestOptionalAuthMiddleware_Tokens(t *testing.T) {
	stubVerifier(t)

	serve := func(header string) (string, bool) {
		var id string
		var ok bool
		handler := OptionalAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok = GetClerkID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trivia/leaderboard", nil)
		req.Header.Set("Authorization", header)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		return id, ok
	}

	id, ok := serve("Bearer good-user_7")
	assert.True(t, ok)
	assert.Equal(t, "user_7", id)

	_, ok = serve("Bearer forged")
	assert.False(t, ok)

	_, ok = serve("good-user_7")
	assert.False(t, ok, "token without Bearer prefix is ignored")
}
