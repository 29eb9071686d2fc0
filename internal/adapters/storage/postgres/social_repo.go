package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kennel-exchange/internal/domain/social"
)

type SocialRepo struct {
	db *sql.DB
}

func NewSocialRepo(db *sql.DB) *SocialRepo {
	return &SocialRepo{db: db}
}

const socialColumns = `id, author_user_id, body, image_url, visibility, status, created_at, removed_at`

func (r *SocialRepo) Create(ctx context.Context, p social.Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO social_posts (`+socialColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		p.ID,
		p.AuthorUserID,
		p.Body,
		p.ImageURL,
		string(p.Visibility),
		string(p.Status),
		p.CreatedAt,
		toNullTime(p.RemovedAt),
	)
	return err
}

func (r *SocialRepo) GetByID(ctx context.Context, id string) (social.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return social.Post{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+socialColumns+` FROM social_posts WHERE id = $1`, id)
	return scanSocialPost(row)
}

func (r *SocialRepo) List(ctx context.Context, filter social.ListFilter) ([]social.Post, error) {
	friendIDs := filter.FriendIDs
	if friendIDs == nil {
		friendIDs = []string{}
	}

	// Base query: activos + regla de visibilidad
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT ` + socialColumns + `
		FROM social_posts
		WHERE status = 'active'
		  AND (visibility = 'members' OR author_user_id = $1 OR author_user_id = ANY($2))
	`)

	args := []any{filter.ViewerUserID, friendIDs}
	argN := 3

	if filter.Author != "" {
		sb.WriteString(fmt.Sprintf(" AND author_user_id = $%d", argN))
		args = append(args, filter.Author)
		argN++
	}
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND created_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND created_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		sb.WriteString(fmt.Sprintf(" AND body ILIKE $%d", argN))
		args = append(args, "%"+q+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	sb.WriteString(" ORDER BY created_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]social.Post, 0)
	for rows.Next() {
		p, err := scanSocialPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SocialRepo) Remove(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE social_posts SET status = 'removed', removed_at = $2 WHERE id = $1
	`, id, at)
	return expectOne(res, err)
}

func scanSocialPost(s scanner) (social.Post, error) {
	var p social.Post
	var vis, status string
	var removedAt sql.NullTime
	if err := s.Scan(
		&p.ID,
		&p.AuthorUserID,
		&p.Body,
		&p.ImageURL,
		&vis,
		&status,
		&p.CreatedAt,
		&removedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return social.Post{}, ErrNotFound
		}
		return social.Post{}, err
	}
	p.Visibility = social.Visibility(vis)
	p.Status = social.Status(status)
	p.RemovedAt = fromNullTime(removedAt)
	return p, nil
}
