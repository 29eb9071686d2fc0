package blog

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Post struct {
	ID           string
	AuthorUserID string

	Title string
	Slug  string // único, derivado del título
	Body  string

	Status      Status
	PublishedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
