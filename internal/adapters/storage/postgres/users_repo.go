package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"kennel-exchange/internal/domain/users"
	"kennel-exchange/internal/ports/auth"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, email, display_name, password_hash, role, newsletter_opt_in, created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		u.ID,
		u.Email,
		u.DisplayName,
		u.PasswordHash,
		string(u.Role),
		u.NewsletterOptIn,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			email = $2,
			display_name = $3,
			password_hash = $4,
			role = $5,
			newsletter_opt_in = $6,
			updated_at = $7
		WHERE id = $1
	`,
		u.ID,
		u.Email,
		u.DisplayName,
		u.PasswordHash,
		string(u.Role),
		u.NewsletterOptIn,
		u.UpdatedAt,
	)
	return expectOne(res, err)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (r *UsersRepo) ListNewsletterSubscribers(ctx context.Context) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE newsletter_opt_in = true
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(s scanner) (users.User, error) {
	var u users.User
	var role string
	if err := s.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&role,
		&u.NewsletterOptIn,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	u.Role = auth.Role(role)
	return u, nil
}
