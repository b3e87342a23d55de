package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapbookAPI/internal/testutil"
	"scrapbookAPI/middleware"
)

func TestClerkAuthRejectsForgedToken(t *testing.T) {
	token, err := testutil.GenerateMockClerkJWT("user_forged")
	require.NoError(t, err)

	called := false
	h := middleware.ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scrapbooks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, rr.Body.String())
	assert.False(t, called)
}

func TestOptionalAuthIgnoresForgedToken(t *testing.T) {
	token, err := testutil.GenerateMockClerkJWT("user_forged")
	require.NoError(t, err)

	var caller string
	var ok bool
	h := middleware.OptionalAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok = middleware.GetClerkID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/scrapbooks/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, ok)
	assert.Empty(t, caller)
}
