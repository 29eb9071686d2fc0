package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/ports/auth"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := New(Config{Secret: "test-secret-test-secret-test-secret", TTL: time.Hour, Issuer: "kx"})
	require.NoError(t, err)
	return s
}

func TestService_IssueVerify(t *testing.T) {
	s := newTestService(t)

	tok, exp, err := s.Issue(auth.Claims{UserID: "u-1", Email: "a@b.c", Role: auth.RoleBreeder})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := s.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "a@b.c", c.Email)
	assert.Equal(t, auth.RoleBreeder, c.Role)
}

func TestService_Expired(t *testing.T) {
	s := newTestService(t)
	past := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return past }

	tok, _, err := s.Issue(auth.Claims{UserID: "u-1"})
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_WrongSecret(t *testing.T) {
	a := newTestService(t)
	b, err := New(Config{Secret: "another-secret-another-secret-xx", Issuer: "kx"})
	require.NoError(t, err)

	tok, _, err := a.Issue(auth.Claims{UserID: "u-1"})
	require.NoError(t, err)

	_, err = b.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
