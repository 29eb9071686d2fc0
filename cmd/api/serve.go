package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kennel-exchange/internal/adapters/auth/jwtauth"
	"kennel-exchange/internal/adapters/cache"
	"kennel-exchange/internal/adapters/coinbase"
	"kennel-exchange/internal/adapters/completion/openai"
	"kennel-exchange/internal/adapters/mail/logmail"
	"kennel-exchange/internal/adapters/mail/smtpmail"
	"kennel-exchange/internal/adapters/payments/stripe"
	"kennel-exchange/internal/adapters/secrets"
	pg "kennel-exchange/internal/adapters/storage/postgres"
	"kennel-exchange/internal/domain/marketdata"
	"kennel-exchange/internal/jobs"
	"kennel-exchange/internal/platform/config"
	"kennel-exchange/internal/platform/metrics"
	"kennel-exchange/internal/router"
	"kennel-exchange/internal/ports/auth"
	cacheport "kennel-exchange/internal/ports/cache"
	"kennel-exchange/internal/ports/completion"
	"kennel-exchange/internal/ports/mail"
	"kennel-exchange/internal/ports/payments"
)

const (
	rateLimitSweepJob  = "ratelimit_sweep"
	rateLimitSweepSpec = "@every 10m"
	shutdownTimeout    = 15 * time.Second
)

func serveCmd() *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP, el relay de mercado y los jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "aplicar migraciones antes de arrancar")
	return cmd
}

func serve(parent context.Context, migrateFirst bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New()

	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = pg.Open(cfg.Database.DSN, poolOptions(cfg))
		if err != nil {
			return err
		}
		defer db.Close()

		if migrateFirst || cfg.Database.AutoMigrate {
			mg, err := pg.NewMigrator(db, log)
			if err != nil {
				return err
			}
			if err := mg.Up(); err != nil {
				return err
			}
		}
		log.Info("using postgres storage")
	} else {
		log.Warn("database.dsn empty, using in-memory storage")
	}

	store, err := buildCache(ctx, cfg, log)
	if err != nil {
		return err
	}

	sealer, err := buildSealer(cfg, log)
	if err != nil {
		return err
	}

	// Sin secreto JWT: modo dev con headers X-Debug-*
	var (
		verifier auth.AuthVerifier
		issuer   auth.TokenIssuer
	)
	if cfg.JWT.Secret != "" {
		jwtSvc, err := jwtauth.New(jwtauth.Config{Secret: cfg.JWT.Secret, TTL: cfg.JWT.TokenTTL, Issuer: cfg.JWT.Issuer})
		if err != nil {
			return err
		}
		verifier, issuer = jwtSvc, jwtSvc
	} else {
		log.Warn("jwt.secret empty, debug auth headers enabled")
	}

	hub := marketdata.NewHub(marketdata.Options{Logger: log, Metrics: m})
	defer hub.Close()
	ws := coinbase.NewWSClient(coinbase.WSConfig{
		URL:            cfg.Coinbase.WSURL,
		ReconnectDelay: cfg.Coinbase.ReconnectDelay,
		Handler:        hub.HandleUpstream,
		OnEvent:        hub.HandleUpstreamEvent,
		Logger:         log,
	})
	hub.Attach(ws)
	go ws.Run(ctx)

	app := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		TokenIssuer:  issuer,
		DB:           db,
		Config:       *cfg,
		Logger:       log,
		Metrics:      m,
		Cache:        store,
		Sealer:       sealer,
		Payments:     buildPayments(cfg, log),
		Mailer:       buildMailer(cfg, log),
		Completer:    buildCompleter(cfg, log),
		Market:       hub,
	})

	sched := jobs.NewScheduler(log, m)
	deps := jobs.Deps{OAuth: app.OAuth}
	if cfg.Newsletter.Enabled {
		deps.Newsletter = app.Newsletter
		deps.NewsletterCron = cfg.Newsletter.Cron
	}
	if err := jobs.Register(sched, deps); err != nil {
		return err
	}
	if rl := app.RateLimiter; rl != nil {
		err := sched.Add(rateLimitSweepJob, rateLimitSweepSpec, func(context.Context) error {
			if n := rl.Sweep(); n > 0 {
				log.Debug("rate limiter sweep", zap.Int("removed", n))
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	sched.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      app,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("jobs still running at shutdown")
	}
	ws.Close()
	return nil
}

func poolOptions(cfg *config.Config) pg.PoolOptions {
	return pg.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}
}

func buildCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cacheport.Store, error) {
	if cfg.Redis.Addr == "" {
		log.Warn("redis.addr empty, using in-memory cache (single replica only)")
		return cache.NewMemoryStore(), nil
	}
	return cache.NewRedisStore(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func buildSealer(cfg *config.Config, log *zap.Logger) (router.Sealer, error) {
	if cfg.Secrets.EncryptionKey != "" {
		return secrets.FromBase64(cfg.Secrets.EncryptionKey)
	}
	log.Warn("secrets.encryption_key empty, sealed data will not survive a restart")
	return secrets.Ephemeral()
}

// buildPayments devuelve nil (interfaz) si Stripe no está configurado.
func buildPayments(cfg *config.Config, log *zap.Logger) payments.Checkout {
	co, err := stripe.New(stripe.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	}, nil)
	if err != nil {
		log.Warn("stripe disabled", zap.Error(err))
		return nil
	}
	return co
}

func buildMailer(cfg *config.Config, log *zap.Logger) mail.Mailer {
	if cfg.SMTP.Host == "" {
		return logmail.New(log)
	}
	m, err := smtpmail.New(smtpmail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		log.Warn("smtp disabled, mails will only be logged", zap.Error(err))
		return logmail.New(log)
	}
	return m
}

func buildCompleter(cfg *config.Config, log *zap.Logger) completion.Completer {
	if cfg.OpenAI.APIKey == "" {
		return nil
	}
	c, err := openai.New(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	})
	if err != nil {
		log.Warn("openai disabled", zap.Error(err))
		return nil
	}
	return c
}
