package siteconfig

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"kennel-exchange/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("config key not found")
	ErrForbidden    = errors.New("forbidden")
)

const maxValueLen = 4096

var keyPattern = regexp.MustCompile(`^[a-z0-9_.]{1,64}$`)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) All(ctx context.Context) ([]Entry, error) {
	return s.repo.All(ctx)
}

func (s *Service) Get(ctx context.Context, key string) (Entry, error) {
	key = strings.TrimSpace(key)
	if !keyPattern.MatchString(key) {
		return Entry{}, ErrInvalidInput
	}
	e, err := s.repo.Get(ctx, key)
	if err != nil {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *Service) Set(ctx context.Context, actor auth.Claims, key, value string) (Entry, error) {
	if !actor.IsAdmin() {
		return Entry{}, ErrForbidden
	}
	key = strings.TrimSpace(key)
	if !keyPattern.MatchString(key) || len(value) > maxValueLen {
		return Entry{}, ErrInvalidInput
	}
	e := Entry{Key: key, Value: value, UpdatedAt: s.now()}
	if err := s.repo.Upsert(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Claims, key string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	key = strings.TrimSpace(key)
	if !keyPattern.MatchString(key) {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return ErrNotFound
	}
	return nil
}
