package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kennel-exchange/internal/domain/orders"
)

type OrdersRepo struct {
	db *sql.DB
}

func NewOrdersRepo(db *sql.DB) *OrdersRepo {
	return &OrdersRepo{db: db}
}

const orderColumns = `id, buyer_user_id, status, total_cents, currency, checkout_session_id, created_at, updated_at, paid_at, cancelled_at`

func (r *OrdersRepo) Create(ctx context.Context, o orders.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		o.ID,
		o.BuyerUserID,
		string(o.Status),
		o.TotalCents,
		o.Currency,
		o.CheckoutSessionID,
		o.CreatedAt,
		o.UpdatedAt,
		toNullTime(o.PaidAt),
		toNullTime(o.CancelledAt),
	); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, puppy_id, price_cents)
			VALUES ($1,$2,$3,$4)
		`, it.ID, o.ID, it.PuppyID, it.PriceCents); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrdersRepo) Update(ctx context.Context, o orders.Order) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, checkout_session_id = $3, updated_at = $4, paid_at = $5, cancelled_at = $6
		WHERE id = $1
	`,
		o.ID,
		string(o.Status),
		o.CheckoutSessionID,
		o.UpdatedAt,
		toNullTime(o.PaidAt),
		toNullTime(o.CancelledAt),
	)
	return expectOne(res, err)
}

func (r *OrdersRepo) AttachSession(ctx context.Context, orderID, sessionID string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET checkout_session_id = $2, updated_at = $3
		WHERE id = $1 AND status = 'PENDING'
	`, orderID, sessionID, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *OrdersRepo) GetByID(ctx context.Context, id string) (orders.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *OrdersRepo) GetBySession(ctx context.Context, sessionID string) (orders.Order, error) {
	if sessionID == "" {
		return orders.Order{}, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE checkout_session_id = $1`, sessionID)
}

func (r *OrdersRepo) getOne(ctx context.Context, q string, arg string) (orders.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return orders.Order{}, err
	}
	o.Items, err = r.items(ctx, o.ID)
	if err != nil {
		return orders.Order{}, err
	}
	return o, nil
}

func (r *OrdersRepo) ListByBuyer(ctx context.Context, buyerUserID string) ([]orders.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE buyer_user_id = $1
		ORDER BY created_at DESC
	`, buyerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = r.items(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrdersRepo) HasPaid(ctx context.Context, buyerUserID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE buyer_user_id = $1 AND status = $2)
	`, buyerUserID, string(orders.StatusPaid)).Scan(&ok)
	return ok, err
}

func (r *OrdersRepo) items(ctx context.Context, orderID string) ([]orders.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, puppy_id, price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.Item, 0)
	for rows.Next() {
		var it orders.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PuppyID, &it.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanOrder(s scanner) (orders.Order, error) {
	var o orders.Order
	var status string
	var paidAt, cancelledAt sql.NullTime
	if err := s.Scan(
		&o.ID,
		&o.BuyerUserID,
		&status,
		&o.TotalCents,
		&o.Currency,
		&o.CheckoutSessionID,
		&o.CreatedAt,
		&o.UpdatedAt,
		&paidAt,
		&cancelledAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, ErrNotFound
		}
		return orders.Order{}, err
	}
	o.Status = orders.Status(status)
	o.PaidAt = fromNullTime(paidAt)
	o.CancelledAt = fromNullTime(cancelledAt)
	return o, nil
}
