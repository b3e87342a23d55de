// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"scrapbookAPI/internal/store"
	"scrapbookAPI/middleware"
)

// SetupTestStore opens a migrated in-memory SQLite store that is closed when
// the test ends.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err, "open sqlite")
	require.NoError(t, s.Migrate(ctx), "migrate sqlite")
	t.Cleanup(s.Close)
	return s
}

// SetupPostgresStore connects to TEST_DATABASE_URL, skipping the test when it
// is unset.
func SetupPostgresStore(t *testing.T) *store.Store {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := store.OpenPostgres(ctx, dbURL, 4)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(s.Close)
	return s
}

// WithCaller returns r carrying clerkID as the authenticated user, the way
// the auth middleware leaves it.
func WithCaller(r *http.Request, clerkID string) *http.Request {
	return r.WithContext(middleware.WithClerkID(r.Context(), clerkID))
}

// UserID returns an id unique to this run.
func UserID(prefix string) string {
	return fmt.Sprintf("user_%s_%d", prefix, time.Now().UnixNano())
}

// GenerateMockClerkJWT signs an HS256 token that real Clerk verification
// rejects.
func GenerateMockClerkJWT(clerkID string) (string, error) {
	secretKey := []byte("test-secret-key-for-testing-only")

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * 24).Unix(),
		"azp": "test-app-id",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// MockClerkWebhookPayload builds a Clerk user event body.
func MockClerkWebhookPayload(eventType, clerkID, email string) []byte {
	var payload string
	switch eventType {
	case "user.created", "user.updated":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"first_name": "Test",
				"last_name": "User",
				"email_addresses": [{
					"id": "email_123",
					"email_address": "%s",
					"verification": {"status": "verified"}
				}],
				"primary_email_address_id": "email_123",
				"image_url": "https://example.com/image.jpg"
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, email, eventType)
	case "user.deleted":
		payload = fmt.Sprintf(`{
			"data": {"id": "%s", "deleted": true},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType)
	}
	return []byte(payload)
}

// SignSvix returns the svix-signature header value for body. secret is the
// raw key bytes base64-encoded behind a whsec_ prefix.
func SignSvix(secret, msgID, timestamp string, body []byte) string {
	key, err := base64.StdEncoding.DecodeString(secret[len("whsec_"):])
	if err != nil {
		panic(err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID + "." + timestamp + "." + string(body)))
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
