package social

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"kennel-exchange/internal/ports/auth"
	"kennel-exchange/internal/ports/capabilities"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("post not found")
	ErrForbidden    = errors.New("forbidden")
	ErrNoAccess     = errors.New("high table requires owning a puppy from the marketplace")
)

const (
	maxBody      = 2000
	defaultLimit = 50
	maxLimit     = 200
)

// FriendGraph resuelve amigos del viewer (friends.Service).
type FriendGraph interface {
	FriendIDs(ctx context.Context, userID string) (map[string]bool, error)
}

type Service struct {
	repo    Repository
	caps    capabilities.CapabilitiesResolver
	friends FriendGraph
	now     func() time.Time
}

func NewService(repo Repository, caps capabilities.CapabilitiesResolver, friends FriendGraph) *Service {
	return &Service{
		repo:    repo,
		caps:    caps,
		friends: friends,
		now:     time.Now,
	}
}

// Access indica si el usuario puede entrar a la High Table.
func (s *Service) Access(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" || s.caps == nil {
		return false, nil
	}
	return s.caps.HasFeature(ctx, capabilities.CapabilityCheck{
		UserID:  userID,
		Feature: capabilities.FeatureHighTable,
	})
}

type CreateInput struct {
	Body       string
	ImageURL   string
	Visibility Visibility
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Post, error) {
	if err := s.requireAccess(ctx, userID); err != nil {
		return Post{}, err
	}

	body := strings.TrimSpace(in.Body)
	if body == "" || utf8.RuneCountInString(body) > maxBody {
		return Post{}, ErrInvalidInput
	}
	img := strings.TrimSpace(in.ImageURL)
	if img != "" {
		u, err := url.Parse(img)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Post{}, ErrInvalidInput
		}
	}
	vis := in.Visibility
	if vis == "" {
		vis = VisibilityMembers
	}
	if vis != VisibilityMembers && vis != VisibilityFriends {
		return Post{}, ErrInvalidInput
	}

	p := Post{
		ID:           uuid.NewString(),
		AuthorUserID: userID,
		Body:         body,
		ImageURL:     img,
		Visibility:   vis,
		Status:       StatusActive,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) Feed(ctx context.Context, userID string, filter ListFilter) ([]Post, error) {
	if err := s.requireAccess(ctx, userID); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, ErrInvalidInput
	}

	filter.ViewerUserID = userID
	filter.FriendIDs = nil
	if s.friends != nil {
		ids, err := s.friends.FriendIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		for id := range ids {
			filter.FriendIDs = append(filter.FriendIDs, id)
		}
	}
	filter.Author = strings.TrimSpace(filter.Author)
	filter.Query = strings.TrimSpace(filter.Query)
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	return s.repo.List(ctx, filter)
}

// Remove marca el post como removed (no se borra). Autor o admin.
func (s *Service) Remove(ctx context.Context, actor auth.Claims, postID string) (Post, error) {
	if !actor.IsAdmin() {
		if err := s.requireAccess(ctx, actor.UserID); err != nil {
			return Post{}, err
		}
	}

	postID = strings.TrimSpace(postID)
	if postID == "" {
		return Post{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return Post{}, ErrNotFound
	}
	if p.AuthorUserID != actor.UserID && !actor.IsAdmin() {
		return Post{}, ErrForbidden
	}

	// Idempotente
	if p.Status == StatusRemoved {
		return p, nil
	}

	now := s.now()
	if err := s.repo.Remove(ctx, p.ID, now); err != nil {
		return Post{}, err
	}
	p.Status = StatusRemoved
	p.RemovedAt = &now
	return p, nil
}

func (s *Service) requireAccess(ctx context.Context, userID string) error {
	ok, err := s.Access(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoAccess
	}
	return nil
}
