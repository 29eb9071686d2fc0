package postgres

import (
	"context"
	"database/sql"
	"errors"

	"kennel-exchange/internal/domain/blog"
)

type BlogRepo struct {
	db *sql.DB
}

func NewBlogRepo(db *sql.DB) *BlogRepo {
	return &BlogRepo{db: db}
}

const blogColumns = `id, author_user_id, title, slug, body, status, published_at, created_at, updated_at`

func (r *BlogRepo) Create(ctx context.Context, p blog.Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blog_posts (`+blogColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID,
		p.AuthorUserID,
		p.Title,
		p.Slug,
		p.Body,
		string(p.Status),
		toNullTime(p.PublishedAt),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return blog.ErrSlugTaken
	}
	return err
}

func (r *BlogRepo) Update(ctx context.Context, p blog.Post) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE blog_posts
		SET
			title = $2,
			slug = $3,
			body = $4,
			status = $5,
			published_at = $6,
			updated_at = $7
		WHERE id = $1
	`,
		p.ID,
		p.Title,
		p.Slug,
		p.Body,
		string(p.Status),
		toNullTime(p.PublishedAt),
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return blog.ErrSlugTaken
	}
	return expectOne(res, err)
}

func (r *BlogRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	return expectOne(res, err)
}

func (r *BlogRepo) GetByID(ctx context.Context, id string) (blog.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE id = $1`, id)
	return scanBlogPost(row)
}

func (r *BlogRepo) GetBySlug(ctx context.Context, slug string) (blog.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1`, slug)
	return scanBlogPost(row)
}

func (r *BlogRepo) ListPublished(ctx context.Context, limit, offset int) ([]blog.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+blogColumns+`
		FROM blog_posts
		WHERE status = 'published' AND published_at IS NOT NULL
		ORDER BY published_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]blog.Post, 0)
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanBlogPost(s scanner) (blog.Post, error) {
	var p blog.Post
	var status string
	var publishedAt sql.NullTime
	if err := s.Scan(
		&p.ID,
		&p.AuthorUserID,
		&p.Title,
		&p.Slug,
		&p.Body,
		&status,
		&publishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return blog.Post{}, ErrNotFound
		}
		return blog.Post{}, err
	}
	p.Status = blog.Status(status)
	p.PublishedAt = fromNullTime(publishedAt)
	return p, nil
}
