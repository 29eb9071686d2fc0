package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kennel-exchange/internal/domain/coinbaseauth"
)

type OAuthTokensRepo struct {
	db *sql.DB
}

func NewOAuthTokensRepo(db *sql.DB) *OAuthTokensRepo {
	return &OAuthTokensRepo{db: db}
}

const oauthTokenColumns = `user_id, encrypted_access, encrypted_refresh, token_type, expiry, scope, created_at, updated_at`

func (r *OAuthTokensRepo) Upsert(ctx context.Context, t coinbaseauth.StoredToken) error {
	var expiry sql.NullTime
	if !t.Expiry.IsZero() {
		expiry = sql.NullTime{Time: t.Expiry, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oauth_tokens (`+oauthTokenColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_access = EXCLUDED.encrypted_access,
			encrypted_refresh = EXCLUDED.encrypted_refresh,
			token_type = EXCLUDED.token_type,
			expiry = EXCLUDED.expiry,
			scope = EXCLUDED.scope,
			updated_at = EXCLUDED.updated_at
	`,
		t.UserID,
		t.EncryptedAccess,
		t.EncryptedRefresh,
		t.TokenType,
		expiry,
		t.Scope,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (r *OAuthTokensRepo) Get(ctx context.Context, userID string) (coinbaseauth.StoredToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+oauthTokenColumns+` FROM oauth_tokens WHERE user_id = $1`, userID)
	return scanOAuthToken(row)
}

func (r *OAuthTokensRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE user_id = $1`, userID)
	return expectOne(res, err)
}

func (r *OAuthTokensRepo) ListExpiring(ctx context.Context, before time.Time) ([]coinbaseauth.StoredToken, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+oauthTokenColumns+`
		FROM oauth_tokens
		WHERE encrypted_refresh IS NOT NULL
		  AND expiry IS NOT NULL
		  AND expiry < $1
		ORDER BY expiry ASC
	`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]coinbaseauth.StoredToken, 0)
	for rows.Next() {
		t, err := scanOAuthToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanOAuthToken(s scanner) (coinbaseauth.StoredToken, error) {
	var t coinbaseauth.StoredToken
	var expiry sql.NullTime
	if err := s.Scan(
		&t.UserID,
		&t.EncryptedAccess,
		&t.EncryptedRefresh,
		&t.TokenType,
		&expiry,
		&t.Scope,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return coinbaseauth.StoredToken{}, ErrNotFound
		}
		return coinbaseauth.StoredToken{}, err
	}
	if expiry.Valid {
		t.Expiry = expiry.Time
	}
	return t, nil
}
