package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kennel-exchange/internal/ports/auth"
	"kennel-exchange/internal/ports/completion"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("post not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("drafting assistant unavailable")
)

const (
	maxTitle           = 200
	maxSlugAttempts    = 50
	randomSlugAttempts = 3
	defaultPageLimit   = 20
	maxPageLimit       = 100

	draftSystemPrompt = "You write warm, practical blog posts for a puppy marketplace. " +
		"Answer with the post body in Markdown, no title, 300 to 600 words."
)

// ErrSlugTaken lo devuelven los repos cuando el slug ya existe.
var ErrSlugTaken = errors.New("slug taken")

type Service struct {
	repo      Repository
	completer completion.Completer
	now       func() time.Time
}

func NewService(repo Repository, completer completion.Completer) *Service {
	return &Service{
		repo:      repo,
		completer: completer,
		now:       time.Now,
	}
}

type CreateInput struct {
	Title   string
	Body    string
	Publish bool
}

func (s *Service) Create(ctx context.Context, actor auth.Claims, in CreateInput) (Post, error) {
	if !canWrite(actor) {
		return Post{}, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > maxTitle {
		return Post{}, ErrInvalidInput
	}
	base := Slugify(title)
	if base == "" {
		base = "post"
	}

	now := s.now()
	p := Post{
		ID:           uuid.NewString(),
		AuthorUserID: actor.UserID,
		Title:        title,
		Body:         strings.TrimSpace(in.Body),
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Publish {
		p.Status = StatusPublished
		p.PublishedAt = &now
	}

	// Primer slug libre; el repo decide ante carreras.
	for n := 1; n <= maxSlugAttempts; n++ {
		p.Slug = withSuffix(base, n)
		if _, err := s.repo.GetBySlug(ctx, p.Slug); err == nil {
			continue
		}
		err := s.repo.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrSlugTaken) {
			return Post{}, err
		}
	}

	// Título muy repetido: sufijo aleatorio en vez de seguir contando.
	for i := 0; i < randomSlugAttempts; i++ {
		p.Slug = base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		err := s.repo.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrSlugTaken) {
			return Post{}, err
		}
	}
	return Post{}, fmt.Errorf("%w: no free slug for %q", ErrSlugTaken, base)
}

type UpdateInput struct {
	Title *string
	Body  *string
}

// Update no cambia el slug: los links publicados siguen funcionando.
func (s *Service) Update(ctx context.Context, actor auth.Claims, id string, in UpdateInput) (Post, error) {
	p, err := s.editable(ctx, actor, id)
	if err != nil {
		return Post{}, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > maxTitle {
			return Post{}, ErrInvalidInput
		}
		p.Title = title
	}
	if in.Body != nil {
		p.Body = strings.TrimSpace(*in.Body)
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

// Publish es idempotente.
func (s *Service) Publish(ctx context.Context, actor auth.Claims, id string) (Post, error) {
	p, err := s.editable(ctx, actor, id)
	if err != nil {
		return Post{}, err
	}
	if p.Status == StatusPublished {
		return p, nil
	}
	now := s.now()
	p.Status = StatusPublished
	p.PublishedAt = &now
	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Claims, id string) error {
	p, err := s.editable(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, p.ID)
}

// GetBySlug: los borradores solo los ven autor y admins.
func (s *Service) GetBySlug(ctx context.Context, viewer auth.Claims, slug string) (Post, error) {
	p, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return Post{}, ErrNotFound
	}
	if p.Status != StatusPublished && p.AuthorUserID != viewer.UserID && !viewer.IsAdmin() {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]Post, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListPublished(ctx, limit, offset)
}

// Draft pide un cuerpo al asistente. No guarda nada.
func (s *Service) Draft(ctx context.Context, actor auth.Claims, title, notes string) (string, error) {
	if !canWrite(actor) {
		return "", ErrForbidden
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitle {
		return "", ErrInvalidInput
	}
	if s.completer == nil {
		return "", ErrUnavailable
	}

	prompt := "Title: " + title
	if n := strings.TrimSpace(notes); n != "" {
		prompt += "\nNotes from the author:\n" + n
	}
	body, err := s.completer.Complete(ctx, completion.Request{
		System:    draftSystemPrompt,
		Prompt:    prompt,
		MaxTokens: 1200,
	})
	if err != nil {
		if errors.Is(err, completion.ErrNotConfigured) {
			return "", ErrUnavailable
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(body), nil
}

func (s *Service) editable(ctx context.Context, actor auth.Claims, id string) (Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Post{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Post{}, ErrNotFound
	}
	if p.AuthorUserID != actor.UserID && !actor.IsAdmin() {
		return Post{}, ErrForbidden
	}
	return p, nil
}

func canWrite(c auth.Claims) bool {
	return c.Role == auth.RoleAdmin || c.Role == auth.RoleBreeder
}
