package social

import "time"

// Visibility: members = toda la High Table; friends = autor + sus amigos.
type Visibility string

const (
	VisibilityMembers Visibility = "members"
	VisibilityFriends Visibility = "friends"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusRemoved Status = "removed"
)

type Post struct {
	ID           string
	AuthorUserID string

	Body     string
	ImageURL string

	Visibility Visibility
	Status     Status

	CreatedAt time.Time
	RemovedAt *time.Time
}
