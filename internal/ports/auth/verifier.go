package auth

import (
	"context"
	"time"
)

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite tokens de sesión para un usuario ya autenticado.
type TokenIssuer interface {
	Issue(claims Claims) (token string, expiresAt time.Time, err error)
}
