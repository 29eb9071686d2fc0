package friends

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"kennel-exchange/internal/domain/users"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

// UserLookup confirma que el destinatario existe (users.Service).
type UserLookup interface {
	Get(ctx context.Context, id string) (users.User, error)
}

type Service struct {
	repo  Repository
	users UserLookup
	now   func() time.Time
}

func NewService(repo Repository, users UserLookup) *Service {
	return &Service{
		repo:  repo,
		users: users,
		now:   time.Now,
	}
}

// Send crea o reutiliza la relación entre from y to:
// aceptada => se devuelve; pendiente en el mismo sentido => se refresca;
// pendiente en sentido inverso => se acepta; si no, nueva pendiente.
func (s *Service) Send(ctx context.Context, fromUserID, toUserID string) (Request, error) {
	from := strings.TrimSpace(fromUserID)
	to := strings.TrimSpace(toUserID)
	if from == "" || to == "" || from == to {
		return Request{}, ErrInvalidInput
	}
	if s.users != nil {
		if _, err := s.users.Get(ctx, to); err != nil {
			return Request{}, ErrNotFound
		}
	}

	existing, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return Request{}, err
	}
	now := s.now()

	if winner, ok := latest(existing, func(r Request) bool { return r.Status == StatusAccepted }); ok {
		s.removeDuplicates(ctx, winner.ID, existing, now)
		return winner, nil
	}

	if winner, ok := latest(existing, func(r Request) bool {
		return r.Status == StatusPending && r.RequesterUserID == from
	}); ok {
		s.removeDuplicates(ctx, winner.ID, existing, now)
		winner.UpdatedAt = now
		if err := s.repo.Update(ctx, winner); err != nil {
			return Request{}, err
		}
		return winner, nil
	}

	if winner, ok := latest(existing, func(r Request) bool {
		return r.Status == StatusPending && r.RequesterUserID == to
	}); ok {
		s.removeDuplicates(ctx, winner.ID, existing, now)
		return s.respond(ctx, winner, StatusAccepted, now)
	}

	r := Request{
		ID:              uuid.NewString(),
		RequesterUserID: from,
		AddresseeUserID: to,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

func (s *Service) Accept(ctx context.Context, requestID, userID string) (Request, error) {
	return s.answer(ctx, requestID, userID, StatusAccepted)
}

func (s *Service) Decline(ctx context.Context, requestID, userID string) (Request, error) {
	return s.answer(ctx, requestID, userID, StatusDeclined)
}

// Remove la puede hacer cualquiera de las dos partes. Idempotente.
func (s *Service) Remove(ctx context.Context, requestID, userID string) (Request, error) {
	r, err := s.load(ctx, requestID, userID)
	if err != nil {
		return Request{}, err
	}
	if !r.Involves(userID) {
		return Request{}, ErrForbidden
	}
	if r.Status == StatusRemoved {
		return r, nil
	}

	now := s.now()
	r.Status = StatusRemoved
	r.UpdatedAt = now
	if err := s.repo.Update(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

func (s *Service) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	items, err := s.listFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]Friend, 0)
	for _, r := range items {
		if r.Status != StatusAccepted {
			continue
		}
		other := r.Other(userID)
		if seen[other] {
			continue
		}
		seen[other] = true

		since := r.UpdatedAt
		if r.RespondedAt != nil {
			since = *r.RespondedAt
		}
		out = append(out, Friend{UserID: other, RequestID: r.ID, Since: since})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Since.After(out[j].Since) })
	return out, nil
}

// ListIncoming: pendientes donde userID responde.
func (s *Service) ListIncoming(ctx context.Context, userID string) ([]Request, error) {
	return s.pending(ctx, userID, func(r Request) bool { return r.AddresseeUserID == userID })
}

// ListOutgoing: pendientes enviadas por userID.
func (s *Service) ListOutgoing(ctx context.Context, userID string) ([]Request, error) {
	return s.pending(ctx, userID, func(r Request) bool { return r.RequesterUserID == userID })
}

func (s *Service) AreFriends(ctx context.Context, a, b string) (bool, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" || a == b {
		return false, nil
	}
	items, err := s.repo.ListBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	for _, r := range items {
		if r.Status == StatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

// FriendIDs es un atajo para el feed social.
func (s *Service) FriendIDs(ctx context.Context, userID string) (map[string]bool, error) {
	fs, err := s.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(fs))
	for _, f := range fs {
		out[f.UserID] = true
	}
	return out, nil
}

func (s *Service) answer(ctx context.Context, requestID, userID string, target Status) (Request, error) {
	r, err := s.load(ctx, requestID, userID)
	if err != nil {
		return Request{}, err
	}
	if r.AddresseeUserID != userID {
		return Request{}, ErrForbidden
	}

	// Idempotente
	if r.Status == target {
		return r, nil
	}
	if r.Status != StatusPending {
		return Request{}, ErrBadState
	}
	return s.respond(ctx, r, target, s.now())
}

func (s *Service) respond(ctx context.Context, r Request, target Status, now time.Time) (Request, error) {
	r.Status = target
	r.UpdatedAt = now
	r.RespondedAt = &now
	if err := s.repo.Update(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

func (s *Service) load(ctx context.Context, requestID, userID string) (Request, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" || strings.TrimSpace(userID) == "" {
		return Request{}, ErrInvalidInput
	}
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return Request{}, ErrNotFound
	}
	return r, nil
}

func (s *Service) listFor(ctx context.Context, userID string) ([]Request, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) pending(ctx context.Context, userID string, keep func(Request) bool) ([]Request, error) {
	items, err := s.listFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Request, 0)
	for _, r := range items {
		if r.Status == StatusPending && keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// removeDuplicates marca como removed cualquier otra request abierta del par.
func (s *Service) removeDuplicates(ctx context.Context, winnerID string, items []Request, now time.Time) {
	for _, r := range items {
		if r.ID == winnerID {
			continue
		}
		if r.Status != StatusPending && r.Status != StatusAccepted {
			continue
		}
		r.Status = StatusRemoved
		r.UpdatedAt = now
		_ = s.repo.Update(ctx, r)
	}
}

func latest(items []Request, match func(Request) bool) (Request, bool) {
	var winner Request
	found := false
	for _, r := range items {
		if !match(r) {
			continue
		}
		if !found || r.UpdatedAt.After(winner.UpdatedAt) {
			winner = r
			found = true
		}
	}
	return winner, found
}
