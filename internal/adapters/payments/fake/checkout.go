// Package fake es un proveedor de pagos en memoria para desarrollo y tests.
// Los webhooks llegan como JSON plano firmado con un secreto compartido.
package fake

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"kennel-exchange/internal/ports/payments"
)

type Checkout struct {
	secret  string
	baseURL string

	mu       sync.Mutex
	sessions map[string]payments.CheckoutInput
}

func New(secret, baseURL string) *Checkout {
	return &Checkout{
		secret:   secret,
		baseURL:  baseURL,
		sessions: map[string]payments.CheckoutInput{},
	}
}

func (c *Checkout) CreateSession(ctx context.Context, in payments.CheckoutInput) (payments.CheckoutSession, error) {
	id := "cs_fake_" + uuid.NewString()

	c.mu.Lock()
	c.sessions[id] = in
	c.mu.Unlock()

	return payments.CheckoutSession{ID: id, URL: c.baseURL + "/fake-checkout/" + id}, nil
}

// Session devuelve lo que se pidió al crear la sesión.
func (c *Checkout) Session(id string) (payments.CheckoutInput, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	in, ok := c.sessions[id]
	return in, ok
}

type wireEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id"`
}

func (c *Checkout) ParseEvent(payload []byte, signatureHeader string) (payments.Event, error) {
	if !hmac.Equal([]byte(c.Sign(payload)), []byte(signatureHeader)) {
		return payments.Event{}, payments.ErrInvalidSignature
	}
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return payments.Event{}, fmt.Errorf("decode fake event: %w", err)
	}
	return payments.Event{
		ID:        w.ID,
		Type:      payments.EventType(w.Type),
		SessionID: w.SessionID,
		OrderID:   w.OrderID,
	}, nil
}

// Sign produce el header que ParseEvent acepta.
func (c *Checkout) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
