package orders

import "time"

// Status de una orden del marketplace.
// @Enum PENDING, PAID, CANCELLED
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

type Order struct {
	ID          string
	BuyerUserID string

	Status     Status
	TotalCents int64
	Currency   string

	// CheckoutSessionID lo asigna el proveedor de pagos al iniciar el checkout.
	CheckoutSessionID string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time

	Items []Item
}

// Item congela el precio del cachorro al momento de la reserva.
type Item struct {
	ID         string
	OrderID    string
	PuppyID    string
	PriceCents int64
}

func (o Order) PuppyIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.PuppyID)
	}
	return ids
}
