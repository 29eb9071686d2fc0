package postgres

import (
	"context"
	"database/sql"
	"errors"

	"kennel-exchange/internal/domain/friends"
)

type FriendsRepo struct {
	db *sql.DB
}

func NewFriendsRepo(db *sql.DB) *FriendsRepo {
	return &FriendsRepo{db: db}
}

const friendColumns = `id, requester_user_id, addressee_user_id, status, created_at, updated_at, responded_at`

func (r *FriendsRepo) Create(ctx context.Context, fr friends.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO friend_requests (`+friendColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		fr.ID,
		fr.RequesterUserID,
		fr.AddresseeUserID,
		string(fr.Status),
		fr.CreatedAt,
		fr.UpdatedAt,
		toNullTime(fr.RespondedAt),
	)
	return err
}

func (r *FriendsRepo) Update(ctx context.Context, fr friends.Request) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE friend_requests
		SET
			status = $2,
			updated_at = $3,
			responded_at = $4
		WHERE id = $1
	`,
		fr.ID,
		string(fr.Status),
		fr.UpdatedAt,
		toNullTime(fr.RespondedAt),
	)
	return expectOne(res, err)
}

func (r *FriendsRepo) GetByID(ctx context.Context, id string) (friends.Request, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+friendColumns+` FROM friend_requests WHERE id = $1`, id)
	return scanFriendRequest(row)
}

func (r *FriendsRepo) ListByUser(ctx context.Context, userID string) ([]friends.Request, error) {
	return r.list(ctx, `
		SELECT `+friendColumns+`
		FROM friend_requests
		WHERE requester_user_id = $1 OR addressee_user_id = $1
		ORDER BY created_at ASC
	`, userID)
}

func (r *FriendsRepo) ListBetween(ctx context.Context, a, b string) ([]friends.Request, error) {
	return r.list(ctx, `
		SELECT `+friendColumns+`
		FROM friend_requests
		WHERE (requester_user_id = $1 AND addressee_user_id = $2)
		   OR (requester_user_id = $2 AND addressee_user_id = $1)
		ORDER BY created_at ASC
	`, a, b)
}

func (r *FriendsRepo) list(ctx context.Context, q string, args ...any) ([]friends.Request, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]friends.Request, 0)
	for rows.Next() {
		fr, err := scanFriendRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func scanFriendRequest(s scanner) (friends.Request, error) {
	var fr friends.Request
	var status string
	var respondedAt sql.NullTime
	if err := s.Scan(
		&fr.ID,
		&fr.RequesterUserID,
		&fr.AddresseeUserID,
		&status,
		&fr.CreatedAt,
		&fr.UpdatedAt,
		&respondedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return friends.Request{}, ErrNotFound
		}
		return friends.Request{}, err
	}
	fr.Status = friends.Status(status)
	fr.RespondedAt = fromNullTime(respondedAt)
	return fr, nil
}
