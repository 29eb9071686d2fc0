package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"kennel-exchange/internal/domain/apikeys"
)

type apiKeyRepo struct {
	mu   sync.RWMutex
	byID map[string]apikeys.Key
}

func NewAPIKeysRepo() apikeys.Repository {
	return &apiKeyRepo{byID: make(map[string]apikeys.Key)}
}

func (r *apiKeyRepo) Create(ctx context.Context, k apikeys.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if k.ID == "" {
		return errors.New("api key id required")
	}
	if _, exists := r.byID[k.ID]; exists {
		return errors.New("api key already exists")
	}
	r.byID[k.ID] = k
	return nil
}

func (r *apiKeyRepo) GetByID(ctx context.Context, id string) (apikeys.Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.byID[id]
	if !ok {
		return apikeys.Key{}, ErrNotFound
	}
	return k, nil
}

func (r *apiKeyRepo) ListByUser(ctx context.Context, userID string) ([]apikeys.Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]apikeys.Key, 0)
	for _, k := range r.byID {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *apiKeyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *apiKeyRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	k.LastUsedAt = &at
	r.byID[id] = k
	return nil
}
