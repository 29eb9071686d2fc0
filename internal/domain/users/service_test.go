package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kennel-exchange/internal/ports/auth"
)

// -------------------------
// Test doubles
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]User{}} }

func (r *testRepo) Create(_ context.Context, u User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(_ context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(_ context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, errRepoNotFound
}

func (r *testRepo) ListNewsletterSubscribers(context.Context) ([]User, error) {
	out := []User{}
	for _, u := range r.byID {
		if u.NewsletterOptIn {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(c auth.Claims) (string, time.Time, error) {
	return "tok-" + c.UserID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, stubIssuer{})
	svc.cost = bcrypt.MinCost
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_NormalizesAndHashes(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{Email: "  Ana@Example.COM ", Password: "supersecret"})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "ana", u.DisplayName)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.NotEqual(t, "supersecret", u.PasswordHash)
}

func TestService_Register_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "no-at-sign", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "supersecret"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "A@B.C", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "supersecret"})
	require.NoError(t, err)

	sess, err := svc.Login(ctx, "A@B.C", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "tok-"+u.ID, sess.Token)

	_, err = svc.Login(ctx, "a@b.c", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.c", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_SetRole_AdminOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, _ := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "supersecret"})

	_, err := svc.SetRole(ctx, auth.Claims{UserID: "x", Role: auth.RoleUser}, u.ID, auth.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.SetRole(ctx, auth.Claims{UserID: "x", Role: auth.RoleAdmin}, u.ID, auth.RoleBreeder)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleBreeder, got.Role)
}

func TestService_PromoteToBreeder_KeepsAdmin(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	u, _ := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "supersecret"})

	u.Role = auth.RoleAdmin
	repo.byID[u.ID] = u

	require.NoError(t, svc.PromoteToBreeder(ctx, u.ID))
	assert.Equal(t, auth.RoleAdmin, repo.byID[u.ID].Role)
}

func TestService_UpdateProfile_Newsletter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, _ := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "supersecret"})

	yes := true
	_, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{NewsletterOptIn: &yes})
	require.NoError(t, err)

	subs, err := svc.ListNewsletterSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, u.ID, subs[0].ID)
}
