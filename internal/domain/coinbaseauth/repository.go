package coinbaseauth

import (
	"context"
	"time"
)

type Repository interface {
	Upsert(ctx context.Context, t StoredToken) error
	Get(ctx context.Context, userID string) (StoredToken, error)
	Delete(ctx context.Context, userID string) error
	// ListExpiring devuelve tokens con refresh token cuyo Expiry es anterior a before.
	ListExpiring(ctx context.Context, before time.Time) ([]StoredToken, error)
}
