package payments

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured    = errors.New("payments not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// LineItem es una línea del checkout (un cachorro).
type LineItem struct {
	Name        string
	Description string
	AmountCents int64
	Quantity    int64
}

type CheckoutInput struct {
	OrderID       string
	CustomerEmail string
	Currency      string
	Items         []LineItem
}

type CheckoutSession struct {
	ID  string
	URL string
}

// EventType de los webhooks que nos interesan.
type EventType string

const (
	// Completed: el pago ya se cobró. Una sesión completada con pago pendiente
	// (medios asincrónicos) llega como EventPaymentPending y no cambia la orden.
	EventCheckoutCompleted EventType = "checkout.session.completed"
	EventCheckoutExpired   EventType = "checkout.session.expired"
	EventPaymentPending    EventType = "checkout.session.payment_pending"
)

// Event es el webhook ya verificado y normalizado.
type Event struct {
	ID        string
	Type      EventType
	SessionID string
	OrderID   string
}

// Checkout abstrae el proveedor de pagos (Stripe en prod, fake en dev/tests).
type Checkout interface {
	CreateSession(ctx context.Context, in CheckoutInput) (CheckoutSession, error)
	ParseEvent(payload []byte, signatureHeader string) (Event, error)
}
