package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kennel-exchange/internal/domain/litters"
	"kennel-exchange/internal/ports/payments"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("order not found")
	ErrBadState     = errors.New("invalid order state")
	ErrUnavailable  = errors.New("one or more puppies are not available")
	ErrNoPayments   = errors.New("payments not configured")
)

const maxPuppiesPerOrder = 5

// Inventory es el lado de cachorros que necesita una orden (litters.Service).
type Inventory interface {
	GetPuppy(ctx context.Context, id string) (litters.Puppy, error)
	Reserve(ctx context.Context, puppyIDs []string) ([]litters.Puppy, error)
	Release(ctx context.Context, puppyIDs []string) error
	MarkSold(ctx context.Context, puppyIDs []string) error
}

type Service struct {
	repo     Repository
	inv      Inventory
	pay      payments.Checkout
	currency string
	log      *zap.Logger
	now      func() time.Time

	// transitions serializa cambios de estado (cancel vs webhook).
	transitions sync.Mutex
}

func NewService(repo Repository, inv Inventory, pay payments.Checkout, currency string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		repo:     repo,
		inv:      inv,
		pay:      pay,
		currency: strings.ToLower(currency),
		log:      log,
		now:      time.Now,
	}
}

// Create reserva los cachorros y registra la orden PENDING.
func (s *Service) Create(ctx context.Context, buyerID string, puppyIDs []string) (Order, error) {
	if strings.TrimSpace(buyerID) == "" {
		return Order{}, ErrInvalidInput
	}
	ids, err := normalizeIDs(puppyIDs)
	if err != nil {
		return Order{}, err
	}

	reserved, err := s.inv.Reserve(ctx, ids)
	if err != nil {
		return Order{}, ErrUnavailable
	}

	now := s.now()
	o := Order{
		ID:          uuid.NewString(),
		BuyerUserID: buyerID,
		Status:      StatusPending,
		Currency:    s.currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, p := range reserved {
		o.Items = append(o.Items, Item{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			PuppyID:    p.ID,
			PriceCents: p.PriceCents,
		})
		o.TotalCents += p.PriceCents
	}

	if err := s.repo.Create(ctx, o); err != nil {
		if relErr := s.inv.Release(ctx, ids); relErr != nil {
			s.log.Error("release after failed order insert", zap.Strings("puppies", ids), zap.Error(relErr))
		}
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// Checkout abre una sesión de pago para una orden PENDING y devuelve la URL.
func (s *Service) Checkout(ctx context.Context, buyerID, buyerEmail, orderID string) (payments.CheckoutSession, error) {
	if s.pay == nil {
		return payments.CheckoutSession{}, ErrNoPayments
	}
	o, err := s.Get(ctx, buyerID, orderID)
	if err != nil {
		return payments.CheckoutSession{}, err
	}
	if o.Status != StatusPending {
		return payments.CheckoutSession{}, ErrBadState
	}

	in := payments.CheckoutInput{
		OrderID:       o.ID,
		CustomerEmail: buyerEmail,
		Currency:      o.Currency,
	}
	for _, it := range o.Items {
		name := "Puppy"
		if p, err := s.inv.GetPuppy(ctx, it.PuppyID); err == nil {
			name = p.Name
		}
		in.Items = append(in.Items, payments.LineItem{
			Name:        name,
			AmountCents: it.PriceCents,
			Quantity:    1,
		})
	}

	sess, err := s.pay.CreateSession(ctx, in)
	if err != nil {
		if errors.Is(err, payments.ErrNotConfigured) {
			return payments.CheckoutSession{}, ErrNoPayments
		}
		return payments.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}

	// La orden pudo cancelarse mientras se creaba la sesión; solo se adjunta si sigue PENDING.
	s.transitions.Lock()
	defer s.transitions.Unlock()

	attached, err := s.repo.AttachSession(ctx, o.ID, sess.ID, s.now())
	if err != nil {
		return payments.CheckoutSession{}, err
	}
	if !attached {
		s.log.Warn("checkout session for an order that is no longer pending",
			zap.String("order_id", o.ID), zap.String("session_id", sess.ID))
		return payments.CheckoutSession{}, ErrBadState
	}
	return sess, nil
}

// HandlePaymentEvent aplica un webhook ya verificado. Reentregas no cambian nada.
func (s *Service) HandlePaymentEvent(ctx context.Context, ev payments.Event) error {
	s.transitions.Lock()
	defer s.transitions.Unlock()

	o, err := s.orderForEvent(ctx, ev)
	if err != nil {
		return err
	}

	switch ev.Type {
	case payments.EventCheckoutCompleted:
		switch o.Status {
		case StatusPaid:
			return nil
		case StatusCancelled:
			s.log.Warn("payment completed for cancelled order", zap.String("order_id", o.ID), zap.String("event_id", ev.ID))
			return ErrBadState
		}
		if err := s.inv.MarkSold(ctx, o.PuppyIDs()); err != nil {
			return fmt.Errorf("mark sold: %w", err)
		}
		now := s.now()
		o.Status = StatusPaid
		o.PaidAt = &now
		o.UpdatedAt = now
		if ev.SessionID != "" {
			o.CheckoutSessionID = ev.SessionID
		}
		s.log.Info("order paid", zap.String("order_id", o.ID))
		return s.repo.Update(ctx, o)

	case payments.EventCheckoutExpired:
		if o.Status != StatusPending {
			return nil
		}
		_, err := s.cancelLocked(ctx, o)
		return err
	}
	return nil
}

// Cancel: solo PENDING. Cancelar dos veces devuelve la misma orden.
func (s *Service) Cancel(ctx context.Context, buyerID, orderID string) (Order, error) {
	s.transitions.Lock()
	defer s.transitions.Unlock()

	o, err := s.Get(ctx, buyerID, orderID)
	if err != nil {
		return Order{}, err
	}
	switch o.Status {
	case StatusCancelled:
		return o, nil
	case StatusPaid:
		return Order{}, ErrBadState
	}
	return s.cancelLocked(ctx, o)
}

func (s *Service) cancelLocked(ctx context.Context, o Order) (Order, error) {
	if err := s.inv.Release(ctx, o.PuppyIDs()); err != nil {
		return Order{}, fmt.Errorf("release puppies: %w", err)
	}
	now := s.now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	if err := s.repo.Update(ctx, o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Get solo para el comprador; a otros usuarios la orden no existe.
func (s *Service) Get(ctx context.Context, userID, orderID string) (Order, error) {
	o, err := s.repo.GetByID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return Order{}, ErrNotFound
	}
	if o.BuyerUserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) ListByBuyer(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByBuyer(ctx, userID)
}

// OwnsPuppy: al menos una orden pagada.
func (s *Service) OwnsPuppy(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, nil
	}
	return s.repo.HasPaid(ctx, userID)
}

func (s *Service) orderForEvent(ctx context.Context, ev payments.Event) (Order, error) {
	if ev.OrderID != "" {
		if o, err := s.repo.GetByID(ctx, ev.OrderID); err == nil {
			return o, nil
		}
	}
	if ev.SessionID != "" {
		if o, err := s.repo.GetBySession(ctx, ev.SessionID); err == nil {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func normalizeIDs(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, ErrInvalidInput
		}
		if _, dup := seen[id]; dup {
			return nil, ErrInvalidInput
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 || len(out) > maxPuppiesPerOrder {
		return nil, ErrInvalidInput
	}
	return out, nil
}
