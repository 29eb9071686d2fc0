package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kennel-exchange/internal/domain/apikeys"
)

type APIKeysRepo struct {
	db *sql.DB
}

func NewAPIKeysRepo(db *sql.DB) *APIKeysRepo {
	return &APIKeysRepo{db: db}
}

const apiKeyColumns = `id, user_id, name, key_name, encrypted_secret, created_at, last_used_at`

func (r *APIKeysRepo) Create(ctx context.Context, k apikeys.Key) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (`+apiKeyColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		k.ID,
		k.UserID,
		k.Name,
		k.KeyName,
		k.EncryptedSecret,
		k.CreatedAt,
		toNullTime(k.LastUsedAt),
	)
	return err
}

func (r *APIKeysRepo) GetByID(ctx context.Context, id string) (apikeys.Key, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id)
	return scanAPIKey(row)
}

func (r *APIKeysRepo) ListByUser(ctx context.Context, userID string) ([]apikeys.Key, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]apikeys.Key, 0)
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *APIKeysRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	return expectOne(res, err)
}

func (r *APIKeysRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at)
	return expectOne(res, err)
}

func scanAPIKey(s scanner) (apikeys.Key, error) {
	var k apikeys.Key
	var lastUsed sql.NullTime
	if err := s.Scan(
		&k.ID,
		&k.UserID,
		&k.Name,
		&k.KeyName,
		&k.EncryptedSecret,
		&k.CreatedAt,
		&lastUsed,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apikeys.Key{}, ErrNotFound
		}
		return apikeys.Key{}, err
	}
	k.LastUsedAt = fromNullTime(lastUsed)
	return k, nil
}
