package newsletter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"kennel-exchange/internal/domain/blog"
	"kennel-exchange/internal/domain/users"
	"kennel-exchange/internal/platform/logger"
	"kennel-exchange/internal/ports/mail"
)

const maxHighlights = 3

type Subscribers interface {
	ListNewsletterSubscribers(ctx context.Context) ([]users.User, error)
}

type Posts interface {
	ListPublished(ctx context.Context, limit, offset int) ([]blog.Post, error)
}

type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Service struct {
	subs    Subscribers
	posts   Posts
	mailer  mail.Mailer
	siteURL string
	log     *zap.Logger
}

// NewService: posts puede ser nil (newsletter sin destacados).
func NewService(subs Subscribers, posts Posts, mailer mail.Mailer, siteURL string, log *zap.Logger) *Service {
	return &Service{
		subs:    subs,
		posts:   posts,
		mailer:  mailer,
		siteURL: strings.TrimRight(siteURL, "/"),
		log:     logger.OrNop(log),
	}
}

// Preview renderiza lo que se enviaría en la fecha dada.
func (s *Service) Preview(ctx context.Context, date time.Time) (Theme, Rendered, error) {
	theme := ThemeFor(date)
	r, err := Render(theme, s.content(ctx, theme, date))
	return theme, r, err
}

// SendSeasonal renderiza una vez y envía a cada suscriptor. Un fallo por
// destinatario no corta el envío.
func (s *Service) SendSeasonal(ctx context.Context, now time.Time) (Result, error) {
	_, msg, err := s.Preview(ctx, now)
	if err != nil {
		return Result{}, fmt.Errorf("render newsletter: %w", err)
	}
	subs, err := s.subs.ListNewsletterSubscribers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list subscribers: %w", err)
	}

	var res Result
	for _, u := range subs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := s.mailer.Send(ctx, mail.Message{
			To:       u.Email,
			Subject:  msg.Subject,
			HTMLBody: msg.HTML,
			TextBody: msg.Text,
		})
		if err != nil {
			res.Failed++
			s.log.Warn("newsletter send failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		res.Sent++
	}
	s.log.Info("newsletter sent", zap.Int("sent", res.Sent), zap.Int("failed", res.Failed))
	return res, nil
}

func (s *Service) content(ctx context.Context, theme Theme, date time.Time) Content {
	c := Content{
		Headline: fmt.Sprintf("%s %d", strings.ToUpper(theme.Name[:1])+theme.Name[1:], date.Year()),
		Intro:    "Here is what happened around the kennels lately.",
	}
	if s.siteURL != "" {
		c.BrowseURL = s.siteURL + "/puppies"
	}
	if s.posts == nil {
		return c
	}
	posts, err := s.posts.ListPublished(ctx, maxHighlights, 0)
	if err != nil {
		s.log.Warn("newsletter highlights unavailable", zap.Error(err))
		return c
	}
	for _, p := range posts {
		c.Highlights = append(c.Highlights, Highlight{Title: p.Title, URL: s.siteURL + "/blog/" + p.Slug})
	}
	return c
}
