// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nusakalaAPI/internal/database"
)

// TestClerkPrefix marks rows created by tests so CleanupTestDB can find them.
const TestClerkPrefix = "user_test_"

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. Tests are
// skipped when the variable is unset.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { CleanupTestDB(t, pool) })
	return pool
}

// CleanupTestDB removes test rows and closes the pool.
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	pattern := TestClerkPrefix + "%"
	for _, q := range []string{
		`DELETE FROM posts WHERE author_id LIKE $1`,
		`DELETE FROM user_streaks WHERE user_id LIKE $1`,
		`DELETE FROM device_tokens WHERE user_id LIKE $1`,
		`DELETE FROM users WHERE clerk_id LIKE $1`,
	} {
		if _, err := pool.Exec(ctx, q, pattern); err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
		}
	}
	pool.Close()
}

// NewClerkID returns a unique Clerk id carrying TestClerkPrefix.
func NewClerkID(name string) string {
	return fmt.Sprintf("%s%s_%d", TestClerkPrefix, name, time.Now().UnixNano())
}

// MockClerkWebhookPayload builds a Clerk webhook body for eventType.
func MockClerkWebhookPayload(eventType, clerkID string) []byte {
	switch eventType {
	case "user.created", "user.updated":
		first := "Test"
		if eventType == "user.updated" {
			first = "Updated"
		}
		return []byte(fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"first_name": "%s",
				"last_name": "User",
				"email_addresses": [{
					"id": "email_123",
					"email_address": "test.user@example.com"
				}],
				"primary_email_address_id": "email_123",
				"username": "",
				"image_url": "https://example.com/image.jpg"
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, first, eventType))

	case "user.deleted":
		return []byte(fmt.Sprintf(`{
			"data": {"id": "%s", "deleted": true},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType))
	}
	return []byte(fmt.Sprintf(`{"data": {}, "object": "event", "type": "%s"}`, eventType))
}

// SvixHeaders signs body the way Clerk's webhook provider does. secret has
// the "whsec_" form shown in the Clerk dashboard.
func SvixHeaders(secret, msgID string, ts time.Time, body []byte) map[string]string {
	key, _ := base64.StdEncoding.DecodeString(secret[len("whsec_"):])
	stamp := strconv.FormatInt(ts.Unix(), 10)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID + "." + stamp + "." + string(body)))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"svix-id":        msgID,
		"svix-timestamp": stamp,
		"svix-signature": "v1," + sig,
	}
}
