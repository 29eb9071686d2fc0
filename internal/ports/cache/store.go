package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Store es un KV con TTL (redis en prod, memoria en dev/tests).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// GetDel lee y borra atómicamente (valores one-shot como el state de OAuth).
	GetDel(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
