package memory

import (
	"context"
	"sort"
	"sync"

	"kennel-exchange/internal/domain/siteconfig"
)

type siteConfigRepo struct {
	mu    sync.RWMutex
	items map[string]siteconfig.Entry
}

func NewSiteConfigRepo() siteconfig.Repository {
	return &siteConfigRepo{items: map[string]siteconfig.Entry{}}
}

func (r *siteConfigRepo) All(ctx context.Context) ([]siteconfig.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]siteconfig.Entry, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *siteConfigRepo) Get(ctx context.Context, key string) (siteconfig.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[key]
	if !ok {
		return siteconfig.Entry{}, ErrNotFound
	}
	return e, nil
}

func (r *siteConfigRepo) Upsert(ctx context.Context, e siteconfig.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[e.Key] = e
	return nil
}

func (r *siteConfigRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[key]; !ok {
		return ErrNotFound
	}
	delete(r.items, key)
	return nil
}
