package memory

import (
	"context"
	"sync"
	"time"

	"kennel-exchange/internal/domain/coinbaseauth"
)

type oauthTokenRepo struct {
	mu     sync.RWMutex
	byUser map[string]coinbaseauth.StoredToken
}

func NewOAuthTokensRepo() coinbaseauth.Repository {
	return &oauthTokenRepo{byUser: make(map[string]coinbaseauth.StoredToken)}
}

func (r *oauthTokenRepo) Upsert(ctx context.Context, t coinbaseauth.StoredToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[t.UserID] = t
	return nil
}

func (r *oauthTokenRepo) Get(ctx context.Context, userID string) (coinbaseauth.StoredToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byUser[userID]
	if !ok {
		return coinbaseauth.StoredToken{}, ErrNotFound
	}
	return t, nil
}

func (r *oauthTokenRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[userID]; !ok {
		return ErrNotFound
	}
	delete(r.byUser, userID)
	return nil
}

func (r *oauthTokenRepo) ListExpiring(ctx context.Context, before time.Time) ([]coinbaseauth.StoredToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]coinbaseauth.StoredToken, 0)
	for _, t := range r.byUser {
		if len(t.EncryptedRefresh) == 0 || t.Expiry.IsZero() {
			continue
		}
		if t.Expiry.Before(before) {
			out = append(out, t)
		}
	}
	return out, nil
}
