package friends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/domain/users"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Request
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Request{}}
}

func (r *testRepo) Create(ctx context.Context, fr Request) error {
	if _, ok := r.byID[fr.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[fr.ID] = fr
	return nil
}

func (r *testRepo) Update(ctx context.Context, fr Request) error {
	if _, ok := r.byID[fr.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[fr.ID] = fr
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Request, error) {
	fr, ok := r.byID[id]
	if !ok {
		return Request{}, errRepoNotFound
	}
	return fr, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]Request, error) {
	out := make([]Request, 0)
	for _, fr := range r.byID {
		if fr.Involves(userID) {
			out = append(out, fr)
		}
	}
	return out, nil
}

func (r *testRepo) ListBetween(ctx context.Context, a, b string) ([]Request, error) {
	out := make([]Request, 0)
	for _, fr := range r.byID {
		if fr.Involves(a) && fr.Involves(b) {
			out = append(out, fr)
		}
	}
	return out, nil
}

type knownUsers map[string]bool

func (k knownUsers) Get(ctx context.Context, id string) (users.User, error) {
	if !k[id] {
		return users.User{}, errors.New("missing")
	}
	return users.User{ID: id}, nil
}

// -------------------------
// Helpers
// -------------------------

func newSvc() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, knownUsers{"ana": true, "bob": true, "cy": true})

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestSend_RejectsSelfAndUnknown(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	_, err := svc.Send(ctx, "ana", "ana")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Send(ctx, "ana", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSend_DedupSameDirection(t *testing.T) {
	svc, repo := newSvc()
	ctx := context.Background()

	first, err := svc.Send(ctx, "ana", "bob")
	require.NoError(t, err)
	second, err := svc.Send(ctx, "ana", "bob")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Len(t, repo.byID, 1)
}

func TestSend_ReverseAccepts(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	pending, err := svc.Send(ctx, "ana", "bob")
	require.NoError(t, err)

	got, err := svc.Send(ctx, "bob", "ana")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)
	assert.Equal(t, StatusAccepted, got.Status)

	ok, err := svc.AreFriends(ctx, "ana", "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	// Ya amigos: se devuelve la misma.
	again, err := svc.Send(ctx, "ana", "bob")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, again.ID)
}

func TestAcceptDecline_AddresseeOnlyAndIdempotent(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	fr, err := svc.Send(ctx, "ana", "bob")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, fr.ID, "ana")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Accept(ctx, fr.ID, "bob")
	require.NoError(t, err)
	require.NotNil(t, got.RespondedAt)

	again, err := svc.Accept(ctx, fr.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, got.RespondedAt, again.RespondedAt)

	_, err = svc.Decline(ctx, fr.ID, "bob")
	assert.ErrorIs(t, err, ErrBadState)
}

func TestRemove_EitherPartyEndsFriendship(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	fr, err := svc.Send(ctx, "ana", "bob")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, fr.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Remove(ctx, fr.ID, "cy")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Remove(ctx, fr.ID, "ana")
	require.NoError(t, err)

	ok, err := svc.AreFriends(ctx, "bob", "ana")
	require.NoError(t, err)
	assert.False(t, ok)

	// Tras remove se puede volver a enviar.
	next, err := svc.Send(ctx, "bob", "ana")
	require.NoError(t, err)
	assert.NotEqual(t, fr.ID, next.ID)
	assert.Equal(t, StatusPending, next.Status)
}

func TestLists(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	ab, err := svc.Send(ctx, "ana", "bob")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "cy", "ana")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, ab.ID, "bob")
	require.NoError(t, err)

	friends, err := svc.ListFriends(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].UserID)

	in, err := svc.ListIncoming(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "cy", in[0].RequesterUserID)

	out, err := svc.ListOutgoing(ctx, "cy")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
