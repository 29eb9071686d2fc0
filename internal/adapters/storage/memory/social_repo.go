package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"kennel-exchange/internal/domain/social"
)

type socialRepo struct {
	mu   sync.RWMutex
	byID map[string]social.Post
}

func NewSocialRepo() social.Repository {
	return &socialRepo{
		byID: make(map[string]social.Post),
	}
}

func (r *socialRepo) Create(ctx context.Context, p social.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		return errors.New("post id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("post already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *socialRepo) GetByID(ctx context.Context, id string) (social.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return social.Post{}, ErrNotFound
	}
	return p, nil
}

func (r *socialRepo) List(ctx context.Context, filter social.ListFilter) ([]social.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]social.Post, 0)
	for _, p := range r.byID {
		if p.Status != social.StatusActive {
			continue
		}
		if !filter.VisibleTo(p) {
			continue
		}
		if filter.Author != "" && p.AuthorUserID != filter.Author {
			continue
		}

		// Date filters (created_at)
		if filter.From != nil && p.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && p.CreatedAt.After(*filter.To) {
			continue
		}

		if q := strings.TrimSpace(filter.Query); q != "" {
			if !strings.Contains(strings.ToLower(p.Body), strings.ToLower(q)) {
				continue
			}
		}
		out = append(out, p)
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *socialRepo) Remove(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = social.StatusRemoved
	p.RemovedAt = &at
	r.byID[id] = p
	return nil
}
