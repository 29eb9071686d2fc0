package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"kennel-exchange/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
)

type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// tokenClaims es el payload firmado.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// Service emite y verifica tokens HS256 de sesión.
// Implementa auth.AuthVerifier y auth.TokenIssuer.
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func New(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrNotConfigured
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: strings.TrimSpace(cfg.Issuer),
		now:    time.Now,
	}, nil
}

func (s *Service) Issue(c auth.Claims) (string, time.Time, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return "", time.Time{}, errors.New("jwt: user id required")
	}
	now := s.now()
	exp := now.Add(s.ttl)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: c.Email,
		Role:  string(c.Role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

func (s *Service) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	var claims tokenClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.Claims{}, ErrExpiredToken
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	role := auth.Role(claims.Role)
	if !role.Valid() {
		role = auth.RoleUser
	}

	return auth.Claims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
