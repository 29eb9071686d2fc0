package breeders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/ports/auth"
)

type testRepo struct {
	byID map[string]Breeder
}

func (r *testRepo) Create(ctx context.Context, b Breeder) error { r.byID[b.ID] = b; return nil }
func (r *testRepo) Update(ctx context.Context, b Breeder) error { r.byID[b.ID] = b; return nil }

func (r *testRepo) GetByID(ctx context.Context, id string) (Breeder, error) {
	b, ok := r.byID[id]
	if !ok {
		return Breeder{}, errors.New("not found")
	}
	return b, nil
}

func (r *testRepo) GetByUser(ctx context.Context, userID string) (Breeder, error) {
	for _, b := range r.byID {
		if b.UserID == userID {
			return b, nil
		}
	}
	return Breeder{}, errors.New("not found")
}

func (r *testRepo) List(ctx context.Context, verifiedOnly bool) ([]Breeder, error) {
	var out []Breeder
	for _, b := range r.byID {
		if !verifiedOnly || b.Verified {
			out = append(out, b)
		}
	}
	return out, nil
}

type promoter struct{ promoted []string }

func (p *promoter) PromoteToBreeder(ctx context.Context, userID string) error {
	p.promoted = append(p.promoted, userID)
	return nil
}

func TestApply_PromotesAndRejectsSecondProfile(t *testing.T) {
	p := &promoter{}
	svc := NewService(&testRepo{byID: map[string]Breeder{}}, p)
	ctx := context.Background()

	b, err := svc.Apply(ctx, "u1", ApplyInput{KennelName: "  Sunny Paws  "})
	require.NoError(t, err)
	assert.Equal(t, "Sunny Paws", b.KennelName)
	assert.False(t, b.Verified)
	assert.Equal(t, []string{"u1"}, p.promoted)

	_, err = svc.Apply(ctx, "u1", ApplyInput{KennelName: "Other"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Apply(ctx, "u2", ApplyInput{KennelName: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerify_AdminOnly(t *testing.T) {
	svc := NewService(&testRepo{byID: map[string]Breeder{}}, nil)
	ctx := context.Background()
	b, err := svc.Apply(ctx, "u1", ApplyInput{KennelName: "K"})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, auth.Claims{UserID: "u1", Role: auth.RoleBreeder}, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	v, err := svc.Verify(ctx, auth.Claims{UserID: "admin", Role: auth.RoleAdmin}, b.ID)
	require.NoError(t, err)
	assert.True(t, v.Verified)

	ok, err := svc.IsVerified(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	verified, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, verified, 1)
}

func TestOwnerOfAndUpdate(t *testing.T) {
	svc := NewService(&testRepo{byID: map[string]Breeder{}}, nil)
	ctx := context.Background()
	b, err := svc.Apply(ctx, "u1", ApplyInput{KennelName: "K"})
	require.NoError(t, err)

	owner, err := svc.OwnerOf(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)

	_, err = svc.OwnerOf(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	loc := "Austin, TX"
	up, err := svc.Update(ctx, "u1", UpdateInput{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, loc, up.Location)

	_, err = svc.Update(ctx, "nobody", UpdateInput{Location: &loc})
	assert.ErrorIs(t, err, ErrNotFound)
}
