package orders

import (
	"context"
	"time"
)

type Repository interface {
	// Create guarda la orden con sus items (atómico).
	Create(ctx context.Context, o Order) error
	// Update persiste estado, session y timestamps. Los items no cambian.
	Update(ctx context.Context, o Order) error
	// AttachSession guarda la sesión de pago solo si la orden sigue PENDING.
	// false => la orden ya no estaba pendiente.
	AttachSession(ctx context.Context, orderID, sessionID string, at time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (Order, error)
	GetBySession(ctx context.Context, sessionID string) (Order, error)
	ListByBuyer(ctx context.Context, buyerUserID string) ([]Order, error)
	HasPaid(ctx context.Context, buyerUserID string) (bool, error)
}
