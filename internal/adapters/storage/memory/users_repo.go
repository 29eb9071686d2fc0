package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"kennel-exchange/internal/domain/users"
)

type userRepo struct {
	mu      sync.RWMutex
	byID    map[string]users.User
	byEmail map[string]string
}

func NewUsersRepo() users.Repository {
	return &userRepo{
		byID:    make(map[string]users.User),
		byEmail: make(map[string]string),
	}
}

func (r *userRepo) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	email := strings.ToLower(u.Email)
	if _, taken := r.byEmail[email]; taken {
		return ErrConflict
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return nil
}

func (r *userRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[u.ID]
	if !exists {
		return ErrNotFound
	}
	if !strings.EqualFold(prev.Email, u.Email) {
		delete(r.byEmail, strings.ToLower(prev.Email))
		r.byEmail[strings.ToLower(u.Email)] = u.ID
	}
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *userRepo) ListNewsletterSubscribers(ctx context.Context) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.User, 0)
	for _, u := range r.byID {
		if u.NewsletterOptIn {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
