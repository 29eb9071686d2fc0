package siteconfig

import "context"

type Repository interface {
	All(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, key string) (Entry, error)
	// Upsert crea o reemplaza.
	Upsert(ctx context.Context, e Entry) error
	Delete(ctx context.Context, key string) error
}
