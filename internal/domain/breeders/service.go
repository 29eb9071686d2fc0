package breeders

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"kennel-exchange/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("breeder not found")
	ErrConflict     = errors.New("breeder profile already exists")
	ErrForbidden    = errors.New("forbidden")
)

const (
	maxKennelName = 120
	maxBio        = 4000
)

// RolePromoter sube el rol del usuario a breeder al crear el perfil.
type RolePromoter interface {
	PromoteToBreeder(ctx context.Context, userID string) error
}

type Service struct {
	repo  Repository
	roles RolePromoter
	now   func() time.Time
}

func NewService(repo Repository, roles RolePromoter) *Service {
	return &Service{
		repo:  repo,
		roles: roles,
		now:   time.Now,
	}
}

type ApplyInput struct {
	KennelName string
	Location   string
	Bio        string
}

func (s *Service) Apply(ctx context.Context, userID string, in ApplyInput) (Breeder, error) {
	userID = strings.TrimSpace(userID)
	name := strings.TrimSpace(in.KennelName)
	if userID == "" || name == "" || utf8.RuneCountInString(name) > maxKennelName {
		return Breeder{}, ErrInvalidInput
	}
	if utf8.RuneCountInString(in.Bio) > maxBio {
		return Breeder{}, ErrInvalidInput
	}
	if _, err := s.repo.GetByUser(ctx, userID); err == nil {
		return Breeder{}, ErrConflict
	}

	now := s.now()
	b := Breeder{
		ID:         uuid.NewString(),
		UserID:     userID,
		KennelName: name,
		Location:   strings.TrimSpace(in.Location),
		Bio:        strings.TrimSpace(in.Bio),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Breeder{}, err
	}
	if s.roles != nil {
		if err := s.roles.PromoteToBreeder(ctx, userID); err != nil {
			return Breeder{}, err
		}
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (Breeder, error) {
	b, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Breeder{}, ErrNotFound
	}
	return b, nil
}

func (s *Service) GetByUser(ctx context.Context, userID string) (Breeder, error) {
	b, err := s.repo.GetByUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		return Breeder{}, ErrNotFound
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, verifiedOnly bool) ([]Breeder, error) {
	return s.repo.List(ctx, verifiedOnly)
}

type UpdateInput struct {
	KennelName *string
	Location   *string
	Bio        *string
}

// Update edita el perfil propio.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (Breeder, error) {
	b, err := s.GetByUser(ctx, userID)
	if err != nil {
		return Breeder{}, err
	}
	if in.KennelName != nil {
		name := strings.TrimSpace(*in.KennelName)
		if name == "" || utf8.RuneCountInString(name) > maxKennelName {
			return Breeder{}, ErrInvalidInput
		}
		b.KennelName = name
	}
	if in.Location != nil {
		b.Location = strings.TrimSpace(*in.Location)
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > maxBio {
			return Breeder{}, ErrInvalidInput
		}
		b.Bio = strings.TrimSpace(*in.Bio)
	}
	b.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, b); err != nil {
		return Breeder{}, err
	}
	return b, nil
}

// Verify: solo admin.
func (s *Service) Verify(ctx context.Context, actor auth.Claims, id string) (Breeder, error) {
	if !actor.IsAdmin() {
		return Breeder{}, ErrForbidden
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return Breeder{}, err
	}
	if b.Verified {
		return b, nil
	}
	b.Verified = true
	b.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, b); err != nil {
		return Breeder{}, err
	}
	return b, nil
}

// OwnerOf expone el userID dueño de un criadero.
// Se usa para evitar ciclos de imports entre módulos (breeders <-> litters).
func (s *Service) OwnerOf(ctx context.Context, breederID string) (string, error) {
	b, err := s.Get(ctx, breederID)
	if err != nil {
		return "", err
	}
	return b.UserID, nil
}

// IsVerified la usa el resolver de capabilities.
func (s *Service) IsVerified(ctx context.Context, userID string) (bool, error) {
	b, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return false, nil
	}
	return b.Verified, nil
}
