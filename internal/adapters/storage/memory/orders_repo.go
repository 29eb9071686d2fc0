package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kennel-exchange/internal/domain/orders"
)

type orderRepo struct {
	mu   sync.RWMutex
	byID map[string]orders.Order
}

func NewOrdersRepo() orders.Repository {
	return &orderRepo{byID: make(map[string]orders.Order)}
}

func (r *orderRepo) Create(ctx context.Context, o orders.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; exists {
		return ErrConflict
	}
	r.byID[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepo) Update(ctx context.Context, o orders.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[o.ID]
	if !ok {
		return ErrNotFound
	}
	o.Items = cur.Items
	r.byID[o.ID] = o
	return nil
}

func (r *orderRepo) AttachSession(ctx context.Context, orderID, sessionID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[orderID]
	if !ok {
		return false, ErrNotFound
	}
	if o.Status != orders.StatusPending {
		return false, nil
	}
	o.CheckoutSessionID = sessionID
	o.UpdatedAt = at
	r.byID[orderID] = o
	return true, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (orders.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return orders.Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) GetBySession(ctx context.Context, sessionID string) (orders.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if sessionID == "" {
		return orders.Order{}, ErrNotFound
	}
	for _, o := range r.byID {
		if o.CheckoutSessionID == sessionID {
			return cloneOrder(o), nil
		}
	}
	return orders.Order{}, ErrNotFound
}

func (r *orderRepo) ListByBuyer(ctx context.Context, buyerUserID string) ([]orders.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]orders.Order, 0)
	for _, o := range r.byID {
		if o.BuyerUserID == buyerUserID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *orderRepo) HasPaid(ctx context.Context, buyerUserID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.byID {
		if o.BuyerUserID == buyerUserID && o.Status == orders.StatusPaid {
			return true, nil
		}
	}
	return false, nil
}

func cloneOrder(o orders.Order) orders.Order {
	o.Items = append([]orders.Item(nil), o.Items...)
	return o
}
