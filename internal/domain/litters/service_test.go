package litters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/domain/breeders"
)

type testRepo struct {
	litters map[string]Litter
	puppies map[string]Puppy

	beforeUpdate func()
}

func newTestRepo() *testRepo {
	return &testRepo{litters: map[string]Litter{}, puppies: map[string]Puppy{}}
}

func (r *testRepo) CreateLitter(ctx context.Context, l Litter) error { r.litters[l.ID] = l; return nil }

func (r *testRepo) GetLitter(ctx context.Context, id string) (Litter, error) {
	l, ok := r.litters[id]
	if !ok {
		return Litter{}, errors.New("not found")
	}
	return l, nil
}

func (r *testRepo) ListLitters(ctx context.Context, breederID string) ([]Litter, error) {
	var out []Litter
	for _, l := range r.litters {
		if breederID == "" || l.BreederID == breederID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *testRepo) CreatePuppy(ctx context.Context, p Puppy) error { r.puppies[p.ID] = p; return nil }

func (r *testRepo) UpdatePuppy(ctx context.Context, p Puppy) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	cur, ok := r.puppies[p.ID]
	if !ok {
		return errors.New("not found")
	}
	if cur.Status != p.Status {
		return errors.New("conflict")
	}
	p.Status = cur.Status
	r.puppies[p.ID] = p
	return nil
}

func (r *testRepo) GetPuppy(ctx context.Context, id string) (Puppy, error) {
	p, ok := r.puppies[id]
	if !ok {
		return Puppy{}, errors.New("not found")
	}
	return p, nil
}

func (r *testRepo) ListPuppiesByLitter(ctx context.Context, litterID string) ([]Puppy, error) {
	var out []Puppy
	for _, p := range r.puppies {
		if p.LitterID == litterID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) SearchPuppies(ctx context.Context, f PuppyFilter) ([]Puppy, error) {
	var out []Puppy
	for _, p := range r.puppies {
		if p.Status == f.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) TransitionPuppies(ctx context.Context, ids []string, from, to PuppyStatus, at time.Time) ([]Puppy, error) {
	for _, id := range ids {
		if p, ok := r.puppies[id]; !ok || p.Status != from {
			return nil, errors.New("conflict")
		}
	}
	out := make([]Puppy, 0, len(ids))
	for _, id := range ids {
		p := r.puppies[id]
		p.Status = to
		p.UpdatedAt = at
		r.puppies[id] = p
		out = append(out, p)
	}
	return out, nil
}

// directory: userID "breeder-user" es dueño del criadero "b1".
type directory struct{}

func (directory) GetByUser(ctx context.Context, userID string) (breeders.Breeder, error) {
	if userID == "breeder-user" {
		return breeders.Breeder{ID: "b1", UserID: userID}, nil
	}
	return breeders.Breeder{}, errors.New("not found")
}

func (directory) OwnerOf(ctx context.Context, breederID string) (string, error) {
	if breederID == "b1" {
		return "breeder-user", nil
	}
	return "", errors.New("not found")
}

func born() *time.Time {
	t := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func seed(t *testing.T) (*Service, *testRepo, Litter, Puppy) {
	t.Helper()
	repo := newTestRepo()
	svc := NewService(repo, directory{})
	ctx := context.Background()

	l, err := svc.CreateLitter(ctx, "breeder-user", CreateLitterInput{Breed: " Beagle ", BornOn: born()})
	require.NoError(t, err)
	p, err := svc.AddPuppy(ctx, "breeder-user", l.ID, AddPuppyInput{Name: "Rex", Sex: "male", PriceCents: 150000})
	require.NoError(t, err)
	return svc, repo, l, p
}

func TestCreateLitter_Rules(t *testing.T) {
	svc := NewService(newTestRepo(), directory{})
	ctx := context.Background()

	_, err := svc.CreateLitter(ctx, "someone", CreateLitterInput{Breed: "beagle", BornOn: born()})
	assert.ErrorIs(t, err, ErrNotBreeder)

	_, err = svc.CreateLitter(ctx, "breeder-user", CreateLitterInput{Breed: "beagle"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateLitter(ctx, "breeder-user", CreateLitterInput{Breed: "  ", BornOn: born()})
	assert.ErrorIs(t, err, ErrInvalidInput)

	l, err := svc.CreateLitter(ctx, "breeder-user", CreateLitterInput{Breed: "Beagle", ExpectedOn: born()})
	require.NoError(t, err)
	assert.Equal(t, "beagle", l.Breed)
	assert.Equal(t, "b1", l.BreederID)
}

func TestAddPuppy_OwnerOnlyAndValidation(t *testing.T) {
	svc, _, l, p := seed(t)
	ctx := context.Background()

	assert.Equal(t, StatusAvailable, p.Status)

	_, err := svc.AddPuppy(ctx, "intruder", l.ID, AddPuppyInput{Name: "X", Sex: "male"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AddPuppy(ctx, "breeder-user", l.ID, AddPuppyInput{Name: "X", Sex: "unknown"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddPuppy(ctx, "breeder-user", l.ID, AddPuppyInput{Name: "X", Sex: "female", PriceCents: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddPuppy(ctx, "breeder-user", "missing", AddPuppyInput{Name: "X", Sex: "female"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePuppy_CannotSellManually(t *testing.T) {
	svc, _, _, p := seed(t)
	sold := "sold"
	_, err := svc.UpdatePuppy(context.Background(), "breeder-user", p.ID, UpdatePuppyInput{Status: &sold})
	assert.ErrorIs(t, err, ErrBadState)
}

func TestUpdatePuppy_StatusBelongsToOrders(t *testing.T) {
	svc, repo, _, p := seed(t)
	ctx := context.Background()

	reserved, available := "reserved", "available"
	_, err := svc.UpdatePuppy(ctx, "breeder-user", p.ID, UpdatePuppyInput{Status: &reserved})
	assert.ErrorIs(t, err, ErrBadState)
	assert.Equal(t, StatusAvailable, repo.puppies[p.ID].Status)

	_, err = svc.Reserve(ctx, []string{p.ID})
	require.NoError(t, err)

	_, err = svc.UpdatePuppy(ctx, "breeder-user", p.ID, UpdatePuppyInput{Status: &available})
	assert.ErrorIs(t, err, ErrBadState)
	assert.Equal(t, StatusReserved, repo.puppies[p.ID].Status)

	// un segundo comprador sigue sin poder reservarlo
	_, err = svc.Reserve(ctx, []string{p.ID})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpdatePuppy_ConcurrentReservationWins(t *testing.T) {
	svc, repo, _, p := seed(t)
	ctx := context.Background()

	repo.beforeUpdate = func() {
		repo.beforeUpdate = nil
		_, err := svc.Reserve(ctx, []string{p.ID})
		require.NoError(t, err)
	}

	name := "Rexy"
	_, err := svc.UpdatePuppy(ctx, "breeder-user", p.ID, UpdatePuppyInput{Name: &name})
	assert.ErrorIs(t, err, ErrBadState)
	assert.Equal(t, StatusReserved, repo.puppies[p.ID].Status)
}

func TestUpdatePuppy_ReservedKeepsPrice(t *testing.T) {
	svc, _, _, p := seed(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, []string{p.ID})
	require.NoError(t, err)

	price := int64(1)
	_, err = svc.UpdatePuppy(ctx, "breeder-user", p.ID, UpdatePuppyInput{PriceCents: &price})
	assert.ErrorIs(t, err, ErrBadState)

	name := "Rexy"
	got, err := svc.UpdatePuppy(ctx, "breeder-user", p.ID, UpdatePuppyInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Rexy", got.Name)
	assert.Equal(t, StatusReserved, got.Status)
}

func TestReserveReleaseSell(t *testing.T) {
	svc, repo, _, p := seed(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, []string{p.ID})
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, []string{p.ID})
	assert.ErrorIs(t, err, ErrUnavailable)

	require.NoError(t, svc.Release(ctx, []string{p.ID}))
	assert.Equal(t, StatusAvailable, repo.puppies[p.ID].Status)

	_, err = svc.Reserve(ctx, []string{p.ID})
	require.NoError(t, err)
	require.NoError(t, svc.MarkSold(ctx, []string{p.ID}))
	assert.Equal(t, StatusSold, repo.puppies[p.ID].Status)

	assert.ErrorIs(t, svc.Release(ctx, []string{p.ID}), ErrBadState)
}

func TestListPuppies_DefaultsAndLimits(t *testing.T) {
	svc, _, _, _ := seed(t)
	ctx := context.Background()

	items, err := svc.ListPuppies(ctx, PuppyFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.ListPuppies(ctx, PuppyFilter{Sex: "other"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListPuppies(ctx, PuppyFilter{Status: "gone"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetLitter_IncludesPuppies(t *testing.T) {
	svc, _, l, _ := seed(t)
	d, err := svc.GetLitter(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Len(t, d.Puppies, 1)

	_, err = svc.GetLitter(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
