package postgres

import (
	"context"
	"database/sql"
	"errors"

	"kennel-exchange/internal/domain/breeders"
)

type BreedersRepo struct {
	db *sql.DB
}

func NewBreedersRepo(db *sql.DB) *BreedersRepo {
	return &BreedersRepo{db: db}
}

const breederColumns = `id, user_id, kennel_name, location, bio, verified, created_at, updated_at`

func (r *BreedersRepo) Create(ctx context.Context, b breeders.Breeder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO breeders (`+breederColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, b.ID, b.UserID, b.KennelName, b.Location, b.Bio, b.Verified, b.CreatedAt, b.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *BreedersRepo) Update(ctx context.Context, b breeders.Breeder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE breeders
		SET
			kennel_name = $2,
			location = $3,
			bio = $4,
			verified = $5,
			updated_at = $6
		WHERE id = $1
	`, b.ID, b.KennelName, b.Location, b.Bio, b.Verified, b.UpdatedAt)
	return expectOne(res, err)
}

func (r *BreedersRepo) GetByID(ctx context.Context, id string) (breeders.Breeder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+breederColumns+` FROM breeders WHERE id = $1`, id)
	return scanBreeder(row)
}

func (r *BreedersRepo) GetByUser(ctx context.Context, userID string) (breeders.Breeder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+breederColumns+` FROM breeders WHERE user_id = $1`, userID)
	return scanBreeder(row)
}

func (r *BreedersRepo) List(ctx context.Context, verifiedOnly bool) ([]breeders.Breeder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+breederColumns+`
		FROM breeders
		WHERE ($1 = false OR verified = true)
		ORDER BY kennel_name ASC
	`, verifiedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]breeders.Breeder, 0)
	for rows.Next() {
		b, err := scanBreeder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBreeder(s scanner) (breeders.Breeder, error) {
	var b breeders.Breeder
	if err := s.Scan(
		&b.ID,
		&b.UserID,
		&b.KennelName,
		&b.Location,
		&b.Bio,
		&b.Verified,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return breeders.Breeder{}, ErrNotFound
		}
		return breeders.Breeder{}, err
	}
	return b, nil
}
