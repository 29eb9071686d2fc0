package social

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Post) error
	GetByID(ctx context.Context, id string) (Post, error)
	// List devuelve posts activos, más recientes primero, visibles para el viewer.
	List(ctx context.Context, filter ListFilter) ([]Post, error)
	Remove(ctx context.Context, id string, at time.Time) error
}

type ListFilter struct {
	// Viewer y sus amigos ven los posts con visibility friends.
	ViewerUserID string
	FriendIDs    []string

	Author string
	From   *time.Time
	To     *time.Time
	Query  string
	Limit  int
}

// VisibleTo aplica la regla de visibilidad (la usan los repos en memoria).
func (f ListFilter) VisibleTo(p Post) bool {
	if p.Visibility != VisibilityFriends || p.AuthorUserID == f.ViewerUserID {
		return true
	}
	for _, id := range f.FriendIDs {
		if id == p.AuthorUserID {
			return true
		}
	}
	return false
}
