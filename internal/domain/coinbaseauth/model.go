package coinbaseauth

import "time"

// StoredToken es el token OAuth de Coinbase de un usuario, sellado en reposo.
type StoredToken struct {
	UserID string

	EncryptedAccess  []byte
	EncryptedRefresh []byte // nil si Coinbase no emitió refresh token

	TokenType string
	Expiry    time.Time // zero = no expira
	Scope     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Status struct {
	Connected bool       `json:"connected"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Scope     string     `json:"scope,omitempty"`
}
