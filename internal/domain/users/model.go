package users

import (
	"time"

	"kennel-exchange/internal/ports/auth"
)

// User es la cuenta compartida por el dashboard de trading y el marketplace.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         auth.Role

	NewsletterOptIn bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
