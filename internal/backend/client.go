// Package backend talks to the NusaKala REST backend that owns accounts,
// events and content moderation.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nusakalaAPI/internal/metrics"
)

// refreshLeeway is how close to expiry an access token may get before it is
// refreshed ahead of the request.
const refreshLeeway = 30 * time.Second

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of err when it is an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	tokens Tokens
}

// NewClient creates a backend client. When email is empty the client calls
// the backend anonymously.
func NewClient(baseURL, email, password string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Do sends a JSON request and decodes the JSON response into out.
//
// A 401 triggers exactly one token renewal and one retry. Any other non-2xx
// response is returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	status, data, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		metrics.ObserveUpstream("backend", err)
		return err
	}

	if status == http.StatusUnauthorized && c.authenticated() {
		log.Printf("Backend: %s %s returned 401, renewing token", method, path)
		token, err = c.renew(ctx, token)
		if err != nil {
			metrics.ObserveUpstream("backend", err)
			return err
		}
		status, data, err = c.send(ctx, method, path, payload, token)
		if err != nil {
			metrics.ObserveUpstream("backend", err)
			return err
		}
	}

	if status < 200 || status >= 300 {
		apiErr := NewAPIError(status, data)
		metrics.ObserveUpstream("backend", apiErr)
		return apiErr
	}
	metrics.ObserveUpstream("backend", nil)

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

func (c *Client) authenticated() bool {
	return c.email != ""
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read backend response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// accessToken returns a usable access token, logging in or refreshing first
// when there is none or it is about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if !c.authenticated() {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens.AccessToken == "" {
		if err := c.loginLocked(ctx); err != nil {
			return "", err
		}
		return c.tokens.AccessToken, nil
	}

	if exp, ok := tokenExpiry(c.tokens.AccessToken); ok && c.now().Add(refreshLeeway).After(exp) {
		if err := c.refreshOrLoginLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.tokens.AccessToken, nil
}

// renew replaces stale after a 401. When another request already renewed it
// the current token is returned without another round trip.
func (c *Client) renew(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens.AccessToken != "" && c.tokens.AccessToken != stale {
		return c.tokens.AccessToken, nil
	}
	if err := c.refreshOrLoginLocked(ctx); err != nil {
		return "", err
	}
	return c.tokens.AccessToken, nil
}

func (c *Client) refreshOrLoginLocked(ctx context.Context) error {
	if c.tokens.RefreshToken != "" {
		err := c.authLocked(ctx, "/auth/refresh", map[string]string{"refreshToken": c.tokens.RefreshToken})
		if err == nil {
			return nil
		}
		log.Printf("Backend: token refresh failed, logging in again: %v", err)
	}
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	return c.authLocked(ctx, "/auth/login", map[string]string{
		"email":    c.email,
		"password": c.password,
	})
}

func (c *Client) authLocked(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode auth request: %w", err)
	}

	status, data, err := c.send(ctx, http.MethodPost, path, payload, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return NewAPIError(status, data)
	}

	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("backend %s returned no access token", path)
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = c.tokens.RefreshToken
	}
	c.tokens = tokens
	return nil
}

// tokenExpiry reads exp from a JWT without verifying it; the backend does
// the verification. Opaque tokens report ok=false.
func tokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// NewAPIError builds an APIError for a non-2xx response, taking a
// best-effort message from the body's "message" or "error" field.
func NewAPIError(status int, body []byte) *APIError {
	msg := http.StatusText(status)

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			msg = parsed.Message
		case parsed.Error != "":
			msg = parsed.Error
		}
	}

	return &APIError{StatusCode: status, Message: msg}
}
