package apikeys

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("api key not found")
	ErrForbidden    = errors.New("forbidden")
	ErrLimitReached = errors.New("api key limit reached")
	ErrNoKey        = errors.New("no api key configured")
)

const maxKeysPerUser = 10

// Sealer cifra/descifra secretos en reposo.
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// PrivateKeyValidator valida que el PEM sea una clave utilizable para firmar.
type PrivateKeyValidator func(pem string) error

type Service struct {
	repo     Repository
	sealer   Sealer
	validate PrivateKeyValidator
	now      func() time.Time
}

func NewService(repo Repository, sealer Sealer, validate PrivateKeyValidator) *Service {
	if validate == nil {
		validate = func(string) error { return nil }
	}
	return &Service{
		repo:     repo,
		sealer:   sealer,
		validate: validate,
		now:      time.Now,
	}
}

type CreateInput struct {
	Name          string
	KeyName       string
	PrivateKeyPEM string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Key, error) {
	userID = strings.TrimSpace(userID)
	keyName := strings.TrimSpace(in.KeyName)
	pem := strings.TrimSpace(in.PrivateKeyPEM)
	if userID == "" || keyName == "" || pem == "" {
		return Key{}, ErrInvalidInput
	}
	// Los PEM suelen venir con "\n" escapados cuando se pegan desde el JSON de Coinbase.
	pem = strings.ReplaceAll(pem, `\n`, "\n")
	if err := s.validate(pem); err != nil {
		return Key{}, ErrInvalidInput
	}

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Key{}, err
	}
	if len(existing) >= maxKeysPerUser {
		return Key{}, ErrLimitReached
	}

	sealed, err := s.sealer.Seal([]byte(pem))
	if err != nil {
		return Key{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Coinbase key"
	}

	k := Key{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		KeyName:         keyName,
		EncryptedSecret: sealed,
		CreatedAt:       s.now(),
	}
	if err := s.repo.Create(ctx, k); err != nil {
		return Key{}, err
	}
	return k, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Key, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	k, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return ErrNotFound
	}
	if k.UserID != userID {
		// no revelar existencia de keys ajenas
		return ErrNotFound
	}
	return s.repo.Delete(ctx, k.ID)
}

// Credentials abre la key más reciente del usuario.
func (s *Service) Credentials(ctx context.Context, userID string) (Credentials, error) {
	keys, err := s.List(ctx, userID)
	if err != nil {
		return Credentials{}, err
	}
	if len(keys) == 0 {
		return Credentials{}, ErrNoKey
	}

	latest := keys[0]
	for _, k := range keys[1:] {
		if k.CreatedAt.After(latest.CreatedAt) {
			latest = k
		}
	}

	plain, err := s.sealer.Open(latest.EncryptedSecret)
	if err != nil {
		return Credentials{}, err
	}
	_ = s.repo.TouchLastUsed(ctx, latest.ID, s.now()) // best-effort

	return Credentials{
		KeyID:         latest.ID,
		KeyName:       latest.KeyName,
		PrivateKeyPEM: string(plain),
	}, nil
}

// MaskKeyName deja visibles solo los últimos 8 caracteres.
func MaskKeyName(s string) string {
	const visible = 8
	if len(s) <= visible {
		return s
	}
	return strings.Repeat("*", len(s)-visible) + s[len(s)-visible:]
}
