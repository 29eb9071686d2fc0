package litters

import (
	"context"
	"time"
)

type Repository interface {
	CreateLitter(ctx context.Context, l Litter) error
	GetLitter(ctx context.Context, id string) (Litter, error)
	// ListLitters con breederID vacío lista todas.
	ListLitters(ctx context.Context, breederID string) ([]Litter, error)

	CreatePuppy(ctx context.Context, p Puppy) error
	// UpdatePuppy guarda datos editables (no el estado) solo si el estado sigue siendo p.Status.
	UpdatePuppy(ctx context.Context, p Puppy) error
	GetPuppy(ctx context.Context, id string) (Puppy, error)
	ListPuppiesByLitter(ctx context.Context, litterID string) ([]Puppy, error)
	SearchPuppies(ctx context.Context, f PuppyFilter) ([]Puppy, error)

	// TransitionPuppies cambia from->to para todos los ids o para ninguno.
	// Si algún cachorro no existe o no está en from, no cambia nada y devuelve error.
	TransitionPuppies(ctx context.Context, ids []string, from, to PuppyStatus, at time.Time) ([]Puppy, error)
}
