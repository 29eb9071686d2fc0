package litters

import "time"

// Sex del cachorro.
// @Enum male, female
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func (s Sex) Valid() bool { return s == SexMale || s == SexFemale }

// PuppyStatus: available -> reserved (orden pendiente) -> sold (pagado).
// @Enum available, reserved, sold
type PuppyStatus string

const (
	StatusAvailable PuppyStatus = "available"
	StatusReserved  PuppyStatus = "reserved"
	StatusSold      PuppyStatus = "sold"
)

func (s PuppyStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold:
		return true
	}
	return false
}

// Litter es una camada de un criadero. BornOn o ExpectedOn (camada por nacer).
type Litter struct {
	ID        string
	BreederID string

	Breed    string
	DamName  string // madre
	SireName string // padre

	BornOn     *time.Time
	ExpectedOn *time.Time

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Puppy struct {
	ID       string
	LitterID string

	Name       string
	Sex        Sex
	Color      string
	PriceCents int64
	Status     PuppyStatus

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PuppyFilter para el listado público.
type PuppyFilter struct {
	Breed         string
	Sex           Sex
	MaxPriceCents int64 // 0 = sin tope
	Status        PuppyStatus
	Limit         int
}
