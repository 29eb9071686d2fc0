package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kennel-exchange/internal/domain/litters"
)

type LittersRepo struct {
	db *sql.DB
}

func NewLittersRepo(db *sql.DB) *LittersRepo {
	return &LittersRepo{db: db}
}

const (
	litterColumns = `id, breeder_id, breed, dam_name, sire_name, born_on, expected_on, notes, created_at, updated_at`
	puppyColumns  = `id, litter_id, name, sex, color, price_cents, status, notes, created_at, updated_at`
)

func (r *LittersRepo) CreateLitter(ctx context.Context, l litters.Litter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO litters (`+litterColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		l.ID,
		l.BreederID,
		l.Breed,
		l.DamName,
		l.SireName,
		toNullTime(l.BornOn),
		toNullTime(l.ExpectedOn),
		l.Notes,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *LittersRepo) GetLitter(ctx context.Context, id string) (litters.Litter, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+litterColumns+` FROM litters WHERE id = $1`, id)
	return scanLitter(row)
}

func (r *LittersRepo) ListLitters(ctx context.Context, breederID string) ([]litters.Litter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+litterColumns+`
		FROM litters
		WHERE ($1 = '' OR breeder_id = $1)
		ORDER BY created_at DESC
	`, breederID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]litters.Litter, 0)
	for rows.Next() {
		l, err := scanLitter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LittersRepo) CreatePuppy(ctx context.Context, p litters.Puppy) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO puppies (`+puppyColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.LitterID,
		p.Name,
		string(p.Sex),
		p.Color,
		p.PriceCents,
		string(p.Status),
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *LittersRepo) UpdatePuppy(ctx context.Context, p litters.Puppy) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE puppies
		SET name = $2, color = $3, price_cents = $4, notes = $6, updated_at = $7
		WHERE id = $1 AND status = $5
	`,
		p.ID,
		p.Name,
		p.Color,
		p.PriceCents,
		string(p.Status),
		p.Notes,
		p.UpdatedAt,
	)
	return expectOne(res, err)
}

func (r *LittersRepo) GetPuppy(ctx context.Context, id string) (litters.Puppy, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+puppyColumns+` FROM puppies WHERE id = $1`, id)
	return scanPuppy(row)
}

func (r *LittersRepo) ListPuppiesByLitter(ctx context.Context, litterID string) ([]litters.Puppy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+puppyColumns+`
		FROM puppies
		WHERE litter_id = $1
		ORDER BY created_at ASC
	`, litterID)
	if err != nil {
		return nil, err
	}
	return collectPuppies(rows)
}

func (r *LittersRepo) SearchPuppies(ctx context.Context, f litters.PuppyFilter) ([]litters.Puppy, error) {
	where := []string{"1=1"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("p.status = $%d", string(f.Status))
	}
	if f.Sex != "" {
		add("p.sex = $%d", string(f.Sex))
	}
	if f.MaxPriceCents > 0 {
		add("p.price_cents <= $%d", f.MaxPriceCents)
	}
	if f.Breed != "" {
		add("l.breed = $%d", f.Breed)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	q := `
		SELECT p.id, p.litter_id, p.name, p.sex, p.color, p.price_cents, p.status, p.notes, p.created_at, p.updated_at
		FROM puppies p
		JOIN litters l ON l.id = p.litter_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY p.created_at DESC
		LIMIT $` + fmt.Sprint(len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectPuppies(rows)
}

// TransitionPuppies corre en una tx: si no cambian exactamente len(ids) filas, rollback.
func (r *LittersRepo) TransitionPuppies(ctx context.Context, ids []string, from, to litters.PuppyStatus, at time.Time) ([]litters.Puppy, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		UPDATE puppies
		SET status = $3, updated_at = $4
		WHERE id = ANY($1) AND status = $2
		RETURNING `+puppyColumns,
		ids, string(from), string(to), at,
	)
	if err != nil {
		return nil, err
	}
	out, err := collectPuppies(rows)
	if err != nil {
		return nil, err
	}
	if len(out) != len(ids) {
		return nil, ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func collectPuppies(rows *sql.Rows) ([]litters.Puppy, error) {
	defer rows.Close()

	out := make([]litters.Puppy, 0)
	for rows.Next() {
		p, err := scanPuppy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanLitter(s scanner) (litters.Litter, error) {
	var l litters.Litter
	var bornOn, expectedOn sql.NullTime
	if err := s.Scan(
		&l.ID,
		&l.BreederID,
		&l.Breed,
		&l.DamName,
		&l.SireName,
		&bornOn,
		&expectedOn,
		&l.Notes,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return litters.Litter{}, ErrNotFound
		}
		return litters.Litter{}, err
	}
	l.BornOn = fromNullTime(bornOn)
	l.ExpectedOn = fromNullTime(expectedOn)
	return l, nil
}

func scanPuppy(s scanner) (litters.Puppy, error) {
	var p litters.Puppy
	var sex, status string
	if err := s.Scan(
		&p.ID,
		&p.LitterID,
		&p.Name,
		&sex,
		&p.Color,
		&p.PriceCents,
		&status,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return litters.Puppy{}, ErrNotFound
		}
		return litters.Puppy{}, err
	}
	p.Sex = litters.Sex(sex)
	p.Status = litters.PuppyStatus(status)
	return p, nil
}
