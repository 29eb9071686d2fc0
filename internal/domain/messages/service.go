package messages

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("direct messages are only allowed between friends")
)

const (
	maxBody      = 2000
	defaultLimit = 50
	maxLimit     = 200
)

// Friendships la implementa friends.Service.
type Friendships interface {
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

type Service struct {
	repo    Repository
	friends Friendships
	now     func() time.Time
}

func NewService(repo Repository, friends Friendships) *Service {
	return &Service{
		repo:    repo,
		friends: friends,
		now:     time.Now,
	}
}

func (s *Service) Send(ctx context.Context, fromUserID, toUserID, body string) (Message, error) {
	from := strings.TrimSpace(fromUserID)
	to := strings.TrimSpace(toUserID)
	body = strings.TrimSpace(body)
	if from == "" || to == "" || from == to {
		return Message{}, ErrInvalidInput
	}
	if body == "" || utf8.RuneCountInString(body) > maxBody {
		return Message{}, ErrInvalidInput
	}

	ok, err := s.friends.AreFriends(ctx, from, to)
	if err != nil {
		return Message{}, err
	}
	if !ok {
		return Message{}, ErrForbidden
	}

	m := Message{
		ID:              uuid.NewString(),
		SenderUserID:    from,
		RecipientUserID: to,
		Body:            body,
		CreatedAt:       s.now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Conversation no exige amistad vigente: el historial sigue visible si se deshace.
func (s *Service) Conversation(ctx context.Context, userID, otherID string, before *time.Time, limit int) ([]Message, error) {
	userID = strings.TrimSpace(userID)
	otherID = strings.TrimSpace(otherID)
	if userID == "" || otherID == "" || userID == otherID {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.repo.Conversation(ctx, userID, otherID, before, limit)
}

func (s *Service) Inbox(ctx context.Context, userID string) ([]Thread, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	latest, err := s.repo.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Thread, 0, len(latest))
	for _, m := range latest {
		other := m.SenderUserID
		if other == userID {
			other = m.RecipientUserID
		}
		out = append(out, Thread{
			WithUserID:  other,
			LastMessage: m,
			Unread:      unread[other],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})
	return out, nil
}

// MarkRead devuelve cuántos mensajes de otherID quedaron leídos.
func (s *Service) MarkRead(ctx context.Context, userID, otherID string) (int, error) {
	userID = strings.TrimSpace(userID)
	otherID = strings.TrimSpace(otherID)
	if userID == "" || otherID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.MarkRead(ctx, userID, otherID, s.now())
}
