package blog

import "context"

type Repository interface {
	// Create devuelve un error de conflicto si el slug ya existe.
	Create(ctx context.Context, p Post) error
	Update(ctx context.Context, p Post) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Post, error)
	GetBySlug(ctx context.Context, slug string) (Post, error)
	ListPublished(ctx context.Context, limit, offset int) ([]Post, error)
}
