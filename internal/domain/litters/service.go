package litters

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"kennel-exchange/internal/domain/breeders"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrNotBreeder   = errors.New("breeder profile required")
	ErrBadState     = errors.New("invalid puppy state")
	ErrUnavailable  = errors.New("puppy not available")
)

const (
	defaultLimit = 50
	maxLimit     = 200
	maxNotes     = 4000
)

// BreederDirectory resuelve criaderos (breeders.Service).
type BreederDirectory interface {
	GetByUser(ctx context.Context, userID string) (breeders.Breeder, error)
	OwnerOf(ctx context.Context, breederID string) (string, error)
}

type Service struct {
	repo     Repository
	breeders BreederDirectory
	now      func() time.Time
}

func NewService(repo Repository, breeders BreederDirectory) *Service {
	return &Service{
		repo:     repo,
		breeders: breeders,
		now:      time.Now,
	}
}

type CreateLitterInput struct {
	Breed      string
	DamName    string
	SireName   string
	BornOn     *time.Time
	ExpectedOn *time.Time
	Notes      string
}

func (s *Service) CreateLitter(ctx context.Context, userID string, in CreateLitterInput) (Litter, error) {
	breed := strings.TrimSpace(in.Breed)
	if breed == "" {
		return Litter{}, ErrInvalidInput
	}
	if in.BornOn == nil && in.ExpectedOn == nil {
		return Litter{}, ErrInvalidInput
	}
	if utf8.RuneCountInString(in.Notes) > maxNotes {
		return Litter{}, ErrInvalidInput
	}

	b, err := s.breeders.GetByUser(ctx, userID)
	if err != nil {
		return Litter{}, ErrNotBreeder
	}

	now := s.now()
	l := Litter{
		ID:         uuid.NewString(),
		BreederID:  b.ID,
		Breed:      strings.ToLower(breed),
		DamName:    strings.TrimSpace(in.DamName),
		SireName:   strings.TrimSpace(in.SireName),
		BornOn:     in.BornOn,
		ExpectedOn: in.ExpectedOn,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateLitter(ctx, l); err != nil {
		return Litter{}, err
	}
	return l, nil
}

// LitterWithPuppies es la vista de detalle.
type LitterWithPuppies struct {
	Litter  Litter
	Puppies []Puppy
}

func (s *Service) GetLitter(ctx context.Context, id string) (LitterWithPuppies, error) {
	l, err := s.repo.GetLitter(ctx, strings.TrimSpace(id))
	if err != nil {
		return LitterWithPuppies{}, ErrNotFound
	}
	pups, err := s.repo.ListPuppiesByLitter(ctx, l.ID)
	if err != nil {
		return LitterWithPuppies{}, err
	}
	return LitterWithPuppies{Litter: l, Puppies: pups}, nil
}

func (s *Service) ListLitters(ctx context.Context, breederID string) ([]Litter, error) {
	return s.repo.ListLitters(ctx, strings.TrimSpace(breederID))
}

type AddPuppyInput struct {
	Name       string
	Sex        string
	Color      string
	PriceCents int64
	Notes      string
}

func (s *Service) AddPuppy(ctx context.Context, userID, litterID string, in AddPuppyInput) (Puppy, error) {
	l, err := s.ownedLitter(ctx, userID, litterID)
	if err != nil {
		return Puppy{}, err
	}

	name := strings.TrimSpace(in.Name)
	sex := Sex(strings.ToLower(strings.TrimSpace(in.Sex)))
	if name == "" || !sex.Valid() || in.PriceCents < 0 {
		return Puppy{}, ErrInvalidInput
	}

	now := s.now()
	p := Puppy{
		ID:         uuid.NewString(),
		LitterID:   l.ID,
		Name:       name,
		Sex:        sex,
		Color:      strings.TrimSpace(in.Color),
		PriceCents: in.PriceCents,
		Status:     StatusAvailable,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreatePuppy(ctx, p); err != nil {
		return Puppy{}, err
	}
	return p, nil
}

type UpdatePuppyInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name       *string
	Color      *string
	PriceCents *int64
	Status     *string
	Notes      *string
}

// UpdatePuppy: solo el dueño de la camada. El estado no se cambia a mano.
func (s *Service) UpdatePuppy(ctx context.Context, userID, puppyID string, in UpdatePuppyInput) (Puppy, error) {
	p, err := s.GetPuppy(ctx, puppyID)
	if err != nil {
		return Puppy{}, err
	}
	if _, err := s.ownedLitter(ctx, userID, p.LitterID); err != nil {
		return Puppy{}, err
	}
	if p.Status == StatusSold {
		return Puppy{}, ErrBadState
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Puppy{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Color != nil {
		p.Color = strings.TrimSpace(*in.Color)
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return Puppy{}, ErrInvalidInput
		}
		if p.Status == StatusReserved && *in.PriceCents != p.PriceCents {
			return Puppy{}, ErrBadState
		}
		p.PriceCents = *in.PriceCents
	}
	if in.Status != nil {
		st := PuppyStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if !st.Valid() {
			return Puppy{}, ErrInvalidInput
		}
		// reserved/sold solo los mueven las órdenes (Reserve/Release/MarkSold)
		if st != p.Status {
			return Puppy{}, ErrBadState
		}
	}
	p.UpdatedAt = s.now()

	if err := s.repo.UpdatePuppy(ctx, p); err != nil {
		// Si una orden cambió el estado entre lectura y escritura, no se pisa.
		if cur, getErr := s.repo.GetPuppy(ctx, p.ID); getErr == nil && cur.Status != p.Status {
			return Puppy{}, ErrBadState
		}
		return Puppy{}, err
	}
	return p, nil
}

func (s *Service) GetPuppy(ctx context.Context, id string) (Puppy, error) {
	p, err := s.repo.GetPuppy(ctx, strings.TrimSpace(id))
	if err != nil {
		return Puppy{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListPuppies(ctx context.Context, f PuppyFilter) ([]Puppy, error) {
	f.Breed = strings.ToLower(strings.TrimSpace(f.Breed))
	if f.Sex != "" && !f.Sex.Valid() {
		return nil, ErrInvalidInput
	}
	if f.Status == "" {
		f.Status = StatusAvailable
	}
	if !f.Status.Valid() || f.MaxPriceCents < 0 {
		return nil, ErrInvalidInput
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return s.repo.SearchPuppies(ctx, f)
}

// Reserve pasa los cachorros a reserved (todos o ninguno).
func (s *Service) Reserve(ctx context.Context, puppyIDs []string) ([]Puppy, error) {
	pups, err := s.repo.TransitionPuppies(ctx, puppyIDs, StatusAvailable, StatusReserved, s.now())
	if err != nil {
		return nil, ErrUnavailable
	}
	return pups, nil
}

// Release devuelve cachorros reservados a available.
func (s *Service) Release(ctx context.Context, puppyIDs []string) error {
	_, err := s.repo.TransitionPuppies(ctx, puppyIDs, StatusReserved, StatusAvailable, s.now())
	if err != nil {
		return ErrBadState
	}
	return nil
}

func (s *Service) MarkSold(ctx context.Context, puppyIDs []string) error {
	_, err := s.repo.TransitionPuppies(ctx, puppyIDs, StatusReserved, StatusSold, s.now())
	if err != nil {
		return ErrBadState
	}
	return nil
}

func (s *Service) ownedLitter(ctx context.Context, userID, litterID string) (Litter, error) {
	l, err := s.repo.GetLitter(ctx, strings.TrimSpace(litterID))
	if err != nil {
		return Litter{}, ErrNotFound
	}
	owner, err := s.breeders.OwnerOf(ctx, l.BreederID)
	if err != nil {
		return Litter{}, err
	}
	if owner != userID {
		return Litter{}, ErrForbidden
	}
	return l, nil
}
