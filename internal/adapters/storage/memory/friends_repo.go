package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"kennel-exchange/internal/domain/friends"
)

type friendRepo struct {
	mu   sync.RWMutex
	byID map[string]friends.Request
}

func NewFriendsRepo() friends.Repository {
	return &friendRepo{byID: make(map[string]friends.Request)}
}

func (r *friendRepo) Create(ctx context.Context, fr friends.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(fr.ID) == "" {
		return errors.New("request id required")
	}
	if _, exists := r.byID[fr.ID]; exists {
		return ErrConflict
	}
	r.byID[fr.ID] = fr
	return nil
}

func (r *friendRepo) Update(ctx context.Context, fr friends.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[fr.ID]; !exists {
		return ErrNotFound
	}
	r.byID[fr.ID] = fr
	return nil
}

func (r *friendRepo) GetByID(ctx context.Context, id string) (friends.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fr, ok := r.byID[id]
	if !ok {
		return friends.Request{}, ErrNotFound
	}
	return fr, nil
}

func (r *friendRepo) ListByUser(ctx context.Context, userID string) ([]friends.Request, error) {
	return r.filter(func(fr friends.Request) bool { return fr.Involves(userID) }), nil
}

func (r *friendRepo) ListBetween(ctx context.Context, a, b string) ([]friends.Request, error) {
	return r.filter(func(fr friends.Request) bool {
		return (fr.RequesterUserID == a && fr.AddresseeUserID == b) ||
			(fr.RequesterUserID == b && fr.AddresseeUserID == a)
	}), nil
}

func (r *friendRepo) filter(keep func(friends.Request) bool) []friends.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]friends.Request, 0)
	for _, fr := range r.byID {
		if keep(fr) {
			out = append(out, fr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
