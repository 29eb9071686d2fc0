package memory

import (
	"context"
	"sort"
	"sync"

	"kennel-exchange/internal/domain/blog"
)

type blogRepo struct {
	mu     sync.RWMutex
	byID   map[string]blog.Post
	bySlug map[string]string
}

func NewBlogRepo() blog.Repository {
	return &blogRepo{
		byID:   map[string]blog.Post{},
		bySlug: map[string]string{},
	}
}

func (r *blogRepo) Create(ctx context.Context, p blog.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySlug[p.Slug]; ok {
		return blog.ErrSlugTaken
	}
	if _, ok := r.byID[p.ID]; ok {
		return ErrConflict
	}
	r.byID[p.ID] = p
	r.bySlug[p.Slug] = p.ID
	return nil
}

func (r *blogRepo) Update(ctx context.Context, p blog.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[p.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Slug != p.Slug {
		if _, taken := r.bySlug[p.Slug]; taken {
			return blog.ErrSlugTaken
		}
		delete(r.bySlug, cur.Slug)
		r.bySlug[p.Slug] = p.ID
	}
	r.byID[p.ID] = p
	return nil
}

func (r *blogRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.bySlug, p.Slug)
	return nil
}

func (r *blogRepo) GetByID(ctx context.Context, id string) (blog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return blog.Post{}, ErrNotFound
	}
	return p, nil
}

func (r *blogRepo) GetBySlug(ctx context.Context, slug string) (blog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return blog.Post{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *blogRepo) ListPublished(ctx context.Context, limit, offset int) ([]blog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]blog.Post, 0)
	for _, p := range r.byID {
		if p.Status == blog.StatusPublished && p.PublishedAt != nil {
			out = append(out, p)
		}
	}
	// Más reciente primero.
	sort.Slice(out, func(i, j int) bool {
		if out[i].PublishedAt.Equal(*out[j].PublishedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].PublishedAt.After(*out[j].PublishedAt)
	})
	if offset >= len(out) {
		return []blog.Post{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
