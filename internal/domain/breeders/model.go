package breeders

import "time"

// Breeder es el perfil de criadero de un usuario (uno por usuario).
type Breeder struct {
	ID     string
	UserID string

	KennelName string
	Location   string
	Bio        string

	// Verified lo marca un admin; los criaderos verificados acceden a la High Table.
	Verified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
