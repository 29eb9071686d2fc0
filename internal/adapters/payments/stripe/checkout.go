// Package stripe implementa payments.Checkout con Stripe Checkout Sessions.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"kennel-exchange/internal/ports/payments"
)

const metadataOrderID = "order_id"

type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type Checkout struct {
	cfg      Config
	sessions session.Client
}

// New usa el backend por defecto de Stripe. backend != nil solo en tests.
func New(cfg Config, backend stripego.Backend) (*Checkout, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, payments.ErrNotConfigured
	}
	if backend == nil {
		backend = stripego.GetBackend(stripego.APIBackend)
	}
	return &Checkout{
		cfg:      cfg,
		sessions: session.Client{B: backend, Key: cfg.SecretKey},
	}, nil
}

func (c *Checkout) CreateSession(ctx context.Context, in payments.CheckoutInput) (payments.CheckoutSession, error) {
	if len(in.Items) == 0 {
		return payments.CheckoutSession{}, errors.New("checkout without items")
	}

	params := &stripego.CheckoutSessionParams{
		Mode:              stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:        stripego.String(c.cfg.SuccessURL),
		CancelURL:         stripego.String(c.cfg.CancelURL),
		ClientReferenceID: stripego.String(in.OrderID),
	}
	params.Context = ctx
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripego.String(in.CustomerEmail)
	}
	params.AddMetadata(metadataOrderID, in.OrderID)

	for _, it := range in.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		product := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripego.String(it.Name),
		}
		if it.Description != "" {
			product.Description = stripego.String(it.Description)
		}
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripego.String(strings.ToLower(in.Currency)),
				UnitAmount:  stripego.Int64(it.AmountCents),
				ProductData: product,
			},
			Quantity: stripego.Int64(qty),
		})
	}

	s, err := c.sessions.New(params)
	if err != nil {
		return payments.CheckoutSession{}, fmt.Errorf("stripe checkout session: %w", err)
	}
	return payments.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

const (
	eventAsyncSucceeded = "checkout.session.async_payment_succeeded"
	eventAsyncFailed    = "checkout.session.async_payment_failed"
)

// ParseEvent verifica la firma y normaliza los eventos de checkout.
// Otros tipos se devuelven con Type crudo y sin order id.
func (c *Checkout) ParseEvent(payload []byte, signatureHeader string) (payments.Event, error) {
	if c.cfg.WebhookSecret == "" {
		return payments.Event{}, payments.ErrNotConfigured
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, c.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return payments.Event{}, fmt.Errorf("%w: %v", payments.ErrInvalidSignature, err)
	}

	out := payments.Event{ID: ev.ID, Type: payments.EventType(ev.Type)}
	switch string(ev.Type) {
	case string(payments.EventCheckoutCompleted), string(payments.EventCheckoutExpired), eventAsyncSucceeded, eventAsyncFailed:
	default:
		return out, nil
	}

	var s stripego.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return payments.Event{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = s.ID
	out.OrderID = s.Metadata[metadataOrderID]
	if out.OrderID == "" {
		out.OrderID = s.ClientReferenceID
	}

	switch string(ev.Type) {
	case string(payments.EventCheckoutCompleted):
		// con medios asincrónicos la sesión se completa antes de cobrar
		if s.PaymentStatus != stripego.CheckoutSessionPaymentStatusPaid &&
			s.PaymentStatus != stripego.CheckoutSessionPaymentStatusNoPaymentRequired {
			out.Type = payments.EventPaymentPending
		}
	case eventAsyncSucceeded:
		out.Type = payments.EventCheckoutCompleted
	case eventAsyncFailed:
		// el cobro no llegó: igual que una sesión vencida, se liberan los cachorros
		out.Type = payments.EventCheckoutExpired
	}
	return out, nil
}
