package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kennel-exchange/internal/ports/auth"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (s stubVerifier) Verify(context.Context, string) (auth.Claims, error) {
	return s.claims, s.err
}

func claimsEcho(t *testing.T, got *auth.Claims, present *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *present = GetClaims(r.Context())
	})
}

func TestAuthContext_DevHeader(t *testing.T) {
	var got auth.Claims
	var ok bool
	h := AuthContext(nil)(claimsEcho(t, &got, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	req.Header.Set("X-Debug-Role", "admin")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, auth.RoleAdmin, got.Role)
}

func TestAuthContext_DevHeaderUnknownRoleFallsBackToUser(t *testing.T) {
	var got auth.Claims
	var ok bool
	h := AuthContext(nil)(claimsEcho(t, &got, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	req.Header.Set("X-Debug-Role", "root")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, auth.RoleUser, got.Role)
}

func TestAuthContext_Bearer(t *testing.T) {
	var got auth.Claims
	var ok bool
	h := AuthContext(stubVerifier{claims: auth.Claims{UserID: "u-2", Role: auth.RoleUser}})(claimsEcho(t, &got, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, "u-2", got.UserID)
}

func TestAuthContext_BadTokenLeavesAnonymous(t *testing.T) {
	var got auth.Claims
	var ok bool
	h := AuthContext(stubVerifier{err: errors.New("bad")})(claimsEcho(t, &got, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, ok)
}

func TestRequireClaims(t *testing.T) {
	w := httptest.NewRecorder()
	_, ok := RequireClaims(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecover_Returns500(t *testing.T) {
	h := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestRateLimiter_PerKey(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.allow("a")

	now = now.Add(11 * time.Minute)
	assert.Equal(t, 1, rl.Sweep())
}
