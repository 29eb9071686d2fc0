package apikeys

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, k Key) error
	GetByID(ctx context.Context, id string) (Key, error)
	ListByUser(ctx context.Context, userID string) ([]Key, error)
	Delete(ctx context.Context, id string) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
