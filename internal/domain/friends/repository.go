package friends

import "context"

type Repository interface {
	Create(ctx context.Context, r Request) error
	Update(ctx context.Context, r Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	// ListByUser devuelve requests donde userID es cualquiera de las partes.
	ListByUser(ctx context.Context, userID string) ([]Request, error)
	// ListBetween devuelve requests entre a y b en ambas direcciones.
	ListBetween(ctx context.Context, a, b string) ([]Request, error)
}
