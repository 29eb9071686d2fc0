package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kennel-exchange/internal/ports/auth"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrConflict           = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
)

const minPasswordLen = 8

type Service struct {
	repo   Repository
	tokens auth.TokenIssuer
	now    func() time.Time
	cost   int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(repo Repository, tokens auth.TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.DisplayName)

	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return User{}, ErrInvalidInput
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return User{}, ErrInvalidInput
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Session es el resultado de un login exitoso.
type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// Login devuelve el mismo error para email inexistente y password incorrecta.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// igualar costo para no filtrar existencia por timing
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	tok, exp, err := s.tokens.Issue(auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok, ExpiresAt: exp}, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

type UpdateProfileInput struct {
	DisplayName     *string
	NewsletterOptIn *bool
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return User{}, ErrInvalidInput
		}
		u.DisplayName = name
	}
	if in.NewsletterOptIn != nil {
		u.NewsletterOptIn = *in.NewsletterOptIn
	}
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// SetRole: solo admin puede cambiar roles arbitrarios.
func (s *Service) SetRole(ctx context.Context, actor auth.Claims, userID string, role auth.Role) (User, error) {
	if !actor.IsAdmin() {
		return User{}, ErrForbidden
	}
	if !role.Valid() {
		return User{}, ErrInvalidInput
	}
	return s.setRole(ctx, userID, role)
}

// PromoteToBreeder la usa breeders al crear el perfil. No degrada admins.
func (s *Service) PromoteToBreeder(ctx context.Context, userID string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role == auth.RoleAdmin || u.Role == auth.RoleBreeder {
		return nil
	}
	_, err = s.setRole(ctx, userID, auth.RoleBreeder)
	return err
}

func (s *Service) setRole(ctx context.Context, userID string, role auth.Role) (User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return User{}, err
	}
	u.Role = role
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) ListNewsletterSubscribers(ctx context.Context) ([]User, error) {
	return s.repo.ListNewsletterSubscribers(ctx)
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	return s.dummyHash
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
