package blog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/ports/auth"
	"kennel-exchange/internal/ports/completion"
)

type testRepo struct {
	byID map[string]Post
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Post{}} }

func (r *testRepo) Create(ctx context.Context, p Post) error {
	for _, cur := range r.byID {
		if cur.Slug == p.Slug {
			return ErrSlugTaken
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Post) error { r.byID[p.ID] = p; return nil }
func (r *testRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Post, error) {
	p, ok := r.byID[id]
	if !ok {
		return Post{}, errors.New("not found")
	}
	return p, nil
}

func (r *testRepo) GetBySlug(ctx context.Context, slug string) (Post, error) {
	for _, p := range r.byID {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, errors.New("not found")
}

func (r *testRepo) ListPublished(ctx context.Context, limit, offset int) ([]Post, error) {
	var out []Post
	for _, p := range r.byID {
		if p.Status == StatusPublished {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

type fakeCompleter struct {
	got completion.Request
	err error
}

func (f *fakeCompleter) Complete(ctx context.Context, req completion.Request) (string, error) {
	f.got = req
	return "  Puppies need sleep.  ", f.err
}

var (
	breeder = auth.Claims{UserID: "b1", Role: auth.RoleBreeder}
	admin   = auth.Claims{UserID: "root", Role: auth.RoleAdmin}
	visitor = auth.Claims{UserID: "v1", Role: auth.RoleUser}
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "first-week-at-home", Slugify("  First week at home!! "))
	assert.Equal(t, "cafe-con-cachorros", Slugify("Café con Cachorros"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestCreate_DedupsSlug(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, breeder, CreateInput{Title: "Crate training"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, breeder, CreateInput{Title: "Crate Training"})
	require.NoError(t, err)
	c, err := svc.Create(ctx, admin, CreateInput{Title: "crate training?", Publish: true})
	require.NoError(t, err)

	assert.Equal(t, "crate-training", a.Slug)
	assert.Equal(t, "crate-training-2", b.Slug)
	assert.Equal(t, "crate-training-3", c.Slug)
	assert.Equal(t, StatusDraft, a.Status)
	assert.NotNil(t, c.PublishedAt)
}

func TestCreate_CrowdedSlugGetsRandomSuffix(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	for n := 1; n <= maxSlugAttempts; n++ {
		repo.byID[fmt.Sprintf("p%d", n)] = Post{ID: fmt.Sprintf("p%d", n), Slug: withSuffix("puppy", n)}
	}

	p, err := svc.Create(ctx, breeder, CreateInput{Title: "Puppy"})
	require.NoError(t, err)
	assert.Regexp(t, `^puppy-[0-9a-f]{8}$`, p.Slug)
}

type takenRepo struct{ *testRepo }

func (takenRepo) Create(ctx context.Context, p Post) error { return ErrSlugTaken }

func TestCreate_NoFreeSlugIsConflict(t *testing.T) {
	svc := NewService(takenRepo{newTestRepo()}, nil)

	_, err := svc.Create(context.Background(), breeder, CreateInput{Title: "Puppy"})
	require.ErrorIs(t, err, ErrSlugTaken)

	rec := httptest.NewRecorder()
	writeError(rec, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreate_RoleAndTitle(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, visitor, CreateInput{Title: "Hi"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, breeder, CreateInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDraftsHiddenUntilPublished(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, breeder, CreateInput{Title: "Secret"})
	require.NoError(t, err)

	_, err = svc.GetBySlug(ctx, visitor, p.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetBySlug(ctx, breeder, p.Slug)
	require.NoError(t, err)
	_, err = svc.GetBySlug(ctx, admin, p.Slug)
	require.NoError(t, err)

	_, err = svc.Publish(ctx, visitor, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	pub, err := svc.Publish(ctx, breeder, p.ID)
	require.NoError(t, err)
	again, err := svc.Publish(ctx, breeder, p.ID)
	require.NoError(t, err)
	assert.Equal(t, pub.PublishedAt, again.PublishedAt)

	_, err = svc.GetBySlug(ctx, auth.Claims{}, p.Slug)
	require.NoError(t, err)

	list, err := svc.ListPublished(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateKeepsSlugAndDelete(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, breeder, CreateInput{Title: "Old"})
	require.NoError(t, err)

	title := "New title"
	got, err := svc.Update(ctx, breeder, p.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "old", got.Slug)
	assert.Equal(t, "New title", got.Title)

	assert.ErrorIs(t, svc.Delete(ctx, visitor, p.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin, p.ID))
	_, err = svc.GetBySlug(ctx, admin, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDraft(t *testing.T) {
	ctx := context.Background()

	_, err := NewService(newTestRepo(), nil).Draft(ctx, breeder, "Feeding", "")
	assert.ErrorIs(t, err, ErrUnavailable)

	fc := &fakeCompleter{}
	body, err := NewService(newTestRepo(), fc).Draft(ctx, breeder, "Feeding", "raw vs kibble")
	require.NoError(t, err)
	assert.Equal(t, "Puppies need sleep.", body)
	assert.Contains(t, fc.got.Prompt, "raw vs kibble")

	fc.err = completion.ErrNotConfigured
	_, err = NewService(newTestRepo(), fc).Draft(ctx, breeder, "Feeding", "")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewService(newTestRepo(), fc).Draft(ctx, visitor, "Feeding", "")
	assert.ErrorIs(t, err, ErrForbidden)
}
