package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kennel-exchange/internal/domain/newsletter"
)

const (
	NewsletterJob   = "newsletter"
	OAuthRefreshJob = "oauth_refresh"

	OAuthRefreshSpec   = "@every 5m"
	OAuthRefreshWindow = 10 * time.Minute
)

type SeasonalSender interface {
	SendSeasonal(ctx context.Context, now time.Time) (newsletter.Result, error)
}

type TokenRefresher interface {
	RefreshExpiring(ctx context.Context, window time.Duration) (refreshed, failed int, err error)
}

// Deps: cualquier campo nil deja su job sin registrar.
type Deps struct {
	Newsletter     SeasonalSender
	NewsletterCron string
	OAuth          TokenRefresher
	Now            func() time.Time
}

// Register da de alta los jobs conocidos.
func Register(s *Scheduler, d Deps) error {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	if d.Newsletter != nil && d.NewsletterCron != "" {
		err := s.Add(NewsletterJob, d.NewsletterCron, func(ctx context.Context) error {
			_, err := d.Newsletter.SendSeasonal(ctx, now())
			return err
		})
		if err != nil {
			return err
		}
	}

	if d.OAuth != nil {
		err := s.Add(OAuthRefreshJob, OAuthRefreshSpec, func(ctx context.Context) error {
			refreshed, failed, err := d.OAuth.RefreshExpiring(ctx, OAuthRefreshWindow)
			if refreshed > 0 || failed > 0 {
				s.log.Info("oauth tokens refreshed", zap.Int("refreshed", refreshed), zap.Int("failed", failed))
			}
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
