package router

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"kennel-exchange/internal/adapters/auth/jwtauth"
	"kennel-exchange/internal/adapters/cache"
	"kennel-exchange/internal/adapters/capabilities/ownership"
	"kennel-exchange/internal/adapters/coinbase"
	"kennel-exchange/internal/adapters/mail/logmail"
	"kennel-exchange/internal/adapters/secrets"
	mem "kennel-exchange/internal/adapters/storage/memory"
	pg "kennel-exchange/internal/adapters/storage/postgres"
	_ "kennel-exchange/internal/docs"
	"kennel-exchange/internal/domain/apikeys"
	"kennel-exchange/internal/domain/blog"
	"kennel-exchange/internal/domain/breeders"
	"kennel-exchange/internal/domain/coinbaseauth"
	"kennel-exchange/internal/domain/friends"
	"kennel-exchange/internal/domain/litters"
	"kennel-exchange/internal/domain/marketdata"
	"kennel-exchange/internal/domain/messages"
	"kennel-exchange/internal/domain/newsletter"
	"kennel-exchange/internal/domain/orders"
	"kennel-exchange/internal/domain/siteconfig"
	"kennel-exchange/internal/domain/social"
	"kennel-exchange/internal/domain/trading"
	"kennel-exchange/internal/domain/users"
	"kennel-exchange/internal/middleware"
	"kennel-exchange/internal/platform/config"
	"kennel-exchange/internal/platform/logger"
	"kennel-exchange/internal/platform/metrics"
	"kennel-exchange/internal/ports/auth"
	cacheport "kennel-exchange/internal/ports/cache"
	"kennel-exchange/internal/ports/completion"
	"kennel-exchange/internal/ports/mail"
	"kennel-exchange/internal/ports/payments"
)

// Sealer cifra secretos en reposo (claves privadas, tokens OAuth).
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  auth.TokenIssuer  // nil => emisor efímero (tokens no verificables sin verifier)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Cache     cacheport.Store
	Sealer    Sealer
	Payments  payments.Checkout    // nil => checkout y webhook responden 503
	Mailer    mail.Mailer          // nil => logmail
	Completer completion.Completer // nil => borradores del blog 503

	// Exchange nil => cliente REST de Coinbase con la config.
	Exchange trading.Exchange
	// Market nil => hub sin upstream (solo útil en tests).
	Market *marketdata.Hub
}

// App es el handler HTTP más los servicios que necesitan los jobs.
type App struct {
	http.Handler

	Newsletter  *newsletter.Service
	OAuth       *coinbaseauth.Service
	RateLimiter *middleware.RateLimiter
}

func NewRouter(opts Options) *App {
	log := logger.OrNop(opts.Logger)
	cfg := opts.Config

	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	store := opts.Cache
	if store == nil {
		store = cache.NewMemoryStore()
	}
	sealer := opts.Sealer
	if sealer == nil {
		box, err := secrets.Ephemeral()
		if err != nil {
			panic(err)
		}
		sealer = box
	}
	issuer := opts.TokenIssuer
	if issuer == nil {
		dev, err := jwtauth.New(jwtauth.Config{Secret: uuid.NewString(), Issuer: cfg.App.Name})
		if err != nil {
			panic(err)
		}
		issuer = dev
	}
	mailer := opts.Mailer
	if mailer == nil {
		mailer = logmail.New(log)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(corsHandler(cfg.HTTP.CORSAllowOrigin))
	r.Use(middleware.RequestLogger(log, m))

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		r.Use(limiter.Handler)
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	if cfg.Swagger.Enabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	var (
		userRepo     users.Repository
		keyRepo      apikeys.Repository
		tokenRepo    coinbaseauth.Repository
		breederRepo  breeders.Repository
		litterRepo   litters.Repository
		orderRepo    orders.Repository
		blogRepo     blog.Repository
		socialRepo   social.Repository
		friendRepo   friends.Repository
		messageRepo  messages.Repository
		siteConfRepo siteconfig.Repository
	)

	if db := opts.DB; db != nil {
		userRepo = pg.NewUsersRepo(db)
		keyRepo = pg.NewAPIKeysRepo(db)
		tokenRepo = pg.NewOAuthTokensRepo(db)
		breederRepo = pg.NewBreedersRepo(db)
		litterRepo = pg.NewLittersRepo(db)
		orderRepo = pg.NewOrdersRepo(db)
		blogRepo = pg.NewBlogRepo(db)
		socialRepo = pg.NewSocialRepo(db)
		friendRepo = pg.NewFriendsRepo(db)
		messageRepo = pg.NewMessagesRepo(db)
		siteConfRepo = pg.NewSiteConfigRepo(db)
	} else {
		userRepo = mem.NewUsersRepo()
		keyRepo = mem.NewAPIKeysRepo()
		tokenRepo = mem.NewOAuthTokensRepo()
		breederRepo = mem.NewBreedersRepo()
		litterRepo = mem.NewLittersRepo()
		orderRepo = mem.NewOrdersRepo()
		blogRepo = mem.NewBlogRepo()
		socialRepo = mem.NewSocialRepo()
		friendRepo = mem.NewFriendsRepo()
		messageRepo = mem.NewMessagesRepo()
		siteConfRepo = mem.NewSiteConfigRepo()
	}

	exchange := opts.Exchange
	if exchange == nil {
		cb, err := coinbase.NewClient(coinbase.Config{
			BaseURL:           cfg.Coinbase.APIBaseURL,
			RequestsPerSecond: cfg.Coinbase.RequestsPerSecond,
		})
		if err != nil {
			panic(err)
		}
		exchange = cb
	}

	currency := cfg.Stripe.Currency
	if currency == "" {
		currency = "usd"
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, issuer)
	keysSvc := apikeys.NewService(keyRepo, sealer, coinbase.ValidatePrivateKey)
	oauthSvc := coinbaseauth.NewService(tokenRepo, store, sealer, coinbaseauth.Config{
		ClientID:     cfg.Coinbase.OAuthClientID,
		ClientSecret: cfg.Coinbase.OAuthClientSecret,
		RedirectURL:  cfg.Coinbase.OAuthRedirectURL,
		AuthURL:      cfg.Coinbase.OAuthAuthURL,
		TokenURL:     cfg.Coinbase.OAuthTokenURL,
		Scopes:       cfg.Coinbase.OAuthScopes,
		FrontendURL:  cfg.App.FrontendURL,
	}, log)
	tradingSvc := trading.NewService(exchange, oauthSvc, keysSvc, store, log)
	breedersSvc := breeders.NewService(breederRepo, usersSvc)
	littersSvc := litters.NewService(litterRepo, breedersSvc)
	ordersSvc := orders.NewService(orderRepo, littersSvc, opts.Payments, currency, log)
	friendsSvc := friends.NewService(friendRepo, usersSvc)
	caps := ownership.NewResolver(ordersSvc, breedersSvc, store)
	socialSvc := social.NewService(socialRepo, caps, friendsSvc)
	messagesSvc := messages.NewService(messageRepo, friendsSvc)
	blogSvc := blog.NewService(blogRepo, opts.Completer)
	siteSvc := siteconfig.NewService(siteConfRepo)
	newsSvc := newsletter.NewService(usersSvc, blogSvc, mailer, cfg.App.FrontendURL, log)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	apikeys.RegisterRoutes(r, keysSvc)
	coinbaseauth.RegisterRoutes(r, oauthSvc)
	trading.RegisterRoutes(r, tradingSvc)
	breeders.RegisterRoutes(r, breedersSvc)
	litters.RegisterRoutes(r, littersSvc)
	orders.RegisterRoutes(r, ordersSvc, opts.Payments, log)
	blog.RegisterRoutes(r, blogSvc)
	social.RegisterRoutes(r, socialSvc)
	friends.RegisterRoutes(r, friendsSvc)
	messages.RegisterRoutes(r, messagesSvc)
	siteconfig.RegisterRoutes(r, siteSvc)
	newsletter.RegisterRoutes(r, newsSvc)

	hub := opts.Market
	if hub == nil {
		hub = marketdata.NewHub(marketdata.Options{Logger: log, Metrics: m})
	}
	r.Get("/ws/market", hub.Handler(cfg.HTTP.CORSAllowOrigin))

	return &App{
		Handler:     r,
		Newsletter:  newsSvc,
		OAuth:       oauthSvc,
		RateLimiter: limiter,
	}
}

// corsHandler: sin orígenes configurados se permite cualquiera (dev).
func corsHandler(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Debug-User-ID", "X-Debug-Role", "Stripe-Signature"},
		MaxAge:         300,
	}).Handler
}
