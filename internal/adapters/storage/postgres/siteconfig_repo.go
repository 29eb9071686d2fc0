package postgres

import (
	"context"
	"database/sql"
	"errors"

	"kennel-exchange/internal/domain/siteconfig"
)

type SiteConfigRepo struct {
	db *sql.DB
}

func NewSiteConfigRepo(db *sql.DB) *SiteConfigRepo {
	return &SiteConfigRepo{db: db}
}

func (r *SiteConfigRepo) All(ctx context.Context) ([]siteconfig.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM site_config ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]siteconfig.Entry, 0)
	for rows.Next() {
		var e siteconfig.Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SiteConfigRepo) Get(ctx context.Context, key string) (siteconfig.Entry, error) {
	var e siteconfig.Entry
	err := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM site_config WHERE key = $1`, key).
		Scan(&e.Key, &e.Value, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return siteconfig.Entry{}, ErrNotFound
	}
	return e, err
}

func (r *SiteConfigRepo) Upsert(ctx context.Context, e siteconfig.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_config (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, e.Key, e.Value, e.UpdatedAt)
	return err
}

func (r *SiteConfigRepo) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM site_config WHERE key = $1`, key)
	return expectOne(res, err)
}
