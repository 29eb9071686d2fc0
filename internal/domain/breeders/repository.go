package breeders

import "context"

type Repository interface {
	Create(ctx context.Context, b Breeder) error
	Update(ctx context.Context, b Breeder) error
	GetByID(ctx context.Context, id string) (Breeder, error)
	GetByUser(ctx context.Context, userID string) (Breeder, error)
	List(ctx context.Context, verifiedOnly bool) ([]Breeder, error)
}
