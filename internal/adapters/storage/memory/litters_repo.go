package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"kennel-exchange/internal/domain/litters"
)

type litterRepo struct {
	mu      sync.RWMutex
	litters map[string]litters.Litter
	puppies map[string]litters.Puppy
}

func NewLittersRepo() litters.Repository {
	return &litterRepo{
		litters: make(map[string]litters.Litter),
		puppies: make(map[string]litters.Puppy),
	}
}

func (r *litterRepo) CreateLitter(ctx context.Context, l litters.Litter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("litter id required")
	}
	if _, exists := r.litters[l.ID]; exists {
		return ErrConflict
	}
	r.litters[l.ID] = l
	return nil
}

func (r *litterRepo) GetLitter(ctx context.Context, id string) (litters.Litter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.litters[id]
	if !ok {
		return litters.Litter{}, ErrNotFound
	}
	return l, nil
}

func (r *litterRepo) ListLitters(ctx context.Context, breederID string) ([]litters.Litter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]litters.Litter, 0)
	for _, l := range r.litters {
		if breederID == "" || l.BreederID == breederID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *litterRepo) CreatePuppy(ctx context.Context, p litters.Puppy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.litters[p.LitterID]; !ok {
		return ErrNotFound
	}
	if _, exists := r.puppies[p.ID]; exists {
		return ErrConflict
	}
	r.puppies[p.ID] = p
	return nil
}

func (r *litterRepo) UpdatePuppy(ctx context.Context, p litters.Puppy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.puppies[p.ID]
	if !exists {
		return ErrNotFound
	}
	if cur.Status != p.Status {
		return ErrConflict
	}
	cur.Name, cur.Color, cur.PriceCents, cur.Notes, cur.UpdatedAt = p.Name, p.Color, p.PriceCents, p.Notes, p.UpdatedAt
	r.puppies[p.ID] = cur
	return nil
}

func (r *litterRepo) GetPuppy(ctx context.Context, id string) (litters.Puppy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.puppies[id]
	if !ok {
		return litters.Puppy{}, ErrNotFound
	}
	return p, nil
}

func (r *litterRepo) ListPuppiesByLitter(ctx context.Context, litterID string) ([]litters.Puppy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]litters.Puppy, 0)
	for _, p := range r.puppies {
		if p.LitterID == litterID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *litterRepo) SearchPuppies(ctx context.Context, f litters.PuppyFilter) ([]litters.Puppy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]litters.Puppy, 0)
	for _, p := range r.puppies {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Sex != "" && p.Sex != f.Sex {
			continue
		}
		if f.MaxPriceCents > 0 && p.PriceCents > f.MaxPriceCents {
			continue
		}
		if f.Breed != "" && r.litters[p.LitterID].Breed != f.Breed {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// TransitionPuppies valida todos antes de tocar ninguno, bajo el mismo lock.
func (r *litterRepo) TransitionPuppies(ctx context.Context, ids []string, from, to litters.PuppyStatus, at time.Time) ([]litters.Puppy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]litters.Puppy, 0, len(ids))
	for _, id := range ids {
		p, ok := r.puppies[id]
		if !ok {
			return nil, ErrNotFound
		}
		if p.Status != from {
			return nil, ErrConflict
		}
		out = append(out, p)
	}
	for i := range out {
		out[i].Status = to
		out[i].UpdatedAt = at
		r.puppies[out[i].ID] = out[i]
	}
	return out, nil
}
