package memory

import (
	"context"
	"sort"
	"sync"

	"kennel-exchange/internal/domain/breeders"
)

type breederRepo struct {
	mu     sync.RWMutex
	byID   map[string]breeders.Breeder
	byUser map[string]string
}

func NewBreedersRepo() breeders.Repository {
	return &breederRepo{
		byID:   map[string]breeders.Breeder{},
		byUser: map[string]string{},
	}
}

func (r *breederRepo) Create(ctx context.Context, b breeders.Breeder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[b.UserID]; ok {
		return ErrConflict
	}
	r.byID[b.ID] = b
	r.byUser[b.UserID] = b.ID
	return nil
}

func (r *breederRepo) Update(ctx context.Context, b breeders.Breeder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[b.ID]; !ok {
		return ErrNotFound
	}
	r.byID[b.ID] = b
	return nil
}

func (r *breederRepo) GetByID(ctx context.Context, id string) (breeders.Breeder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return breeders.Breeder{}, ErrNotFound
	}
	return b, nil
}

func (r *breederRepo) GetByUser(ctx context.Context, userID string) (breeders.Breeder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUser[userID]
	if !ok {
		return breeders.Breeder{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *breederRepo) List(ctx context.Context, verifiedOnly bool) ([]breeders.Breeder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]breeders.Breeder, 0, len(r.byID))
	for _, b := range r.byID {
		if verifiedOnly && !b.Verified {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KennelName < out[j].KennelName })
	return out, nil
}
