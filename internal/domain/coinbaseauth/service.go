package coinbaseauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"kennel-exchange/internal/ports/cache"
)

var (
	ErrNotConfigured = errors.New("coinbase oauth not configured")
	ErrInvalidState  = errors.New("invalid or expired oauth state")
	ErrNotConnected  = errors.New("coinbase account not connected")
	ErrExchange      = errors.New("oauth code exchange failed")
	ErrInvalidInput  = errors.New("invalid input")
)

const (
	stateTTL    = 10 * time.Minute
	statePrefix = "oauth:state:"

	DefaultAuthURL  = "https://login.coinbase.com/oauth2/auth"
	DefaultTokenURL = "https://login.coinbase.com/oauth2/token"
)

// Sealer cifra los tokens en reposo.
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string

	// FrontendURL recibe al usuario tras el callback.
	FrontendURL string

	// HTTPClient opcional para las llamadas al token endpoint (tests).
	HTTPClient *http.Client
}

type Service struct {
	repo   Repository
	states cache.Store
	sealer Sealer
	oauth  *oauth2.Config
	cfg    Config
	log    *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, states cache.Store, sealer Sealer, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	return &Service{
		repo:   repo,
		states: states,
		sealer: sealer,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		cfg: cfg,
		log: log.Named("coinbase_oauth"),
		now: time.Now,
	}
}

func (s *Service) IsConfigured() bool {
	return s != nil && s.cfg.ClientID != "" && s.cfg.RedirectURL != ""
}

// AuthorizeURL genera un state de un solo uso ligado al usuario.
func (s *Service) AuthorizeURL(ctx context.Context, userID string) (string, error) {
	if !s.IsConfigured() {
		return "", ErrNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidInput
	}

	state := uuid.NewString()
	if err := s.states.Set(ctx, statePrefix+state, []byte(userID), stateTTL); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

// Callback valida el state (CSRF), canjea el code y guarda el token. Devuelve el userID.
func (s *Service) Callback(ctx context.Context, code, state string) (string, error) {
	if !s.IsConfigured() {
		return "", ErrNotConfigured
	}
	code = strings.TrimSpace(code)
	state = strings.TrimSpace(state)
	if state == "" {
		return "", ErrInvalidState
	}

	raw, err := s.states.GetDel(ctx, statePrefix+state)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return "", ErrInvalidState
		}
		return "", err
	}
	userID := string(raw)
	if code == "" {
		return "", ErrInvalidInput
	}

	tok, err := s.oauth.Exchange(s.clientCtx(ctx), code)
	if err != nil {
		s.log.Warn("code exchange failed", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrExchange, err)
	}
	if err := s.save(ctx, userID, tok); err != nil {
		return "", err
	}

	s.log.Info("coinbase connected", zap.String("user_id", userID))
	return userID, nil
}

// ConnectedRedirect es adonde vuelve el navegador tras conectar.
func (s *Service) ConnectedRedirect() string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + "/trade?connected=1"
}

// TokenSource entrega un TokenSource que persiste los tokens rotados.
func (s *Service) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	tok, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.IsConfigured() && !tok.Valid() {
		// sin client no se puede refrescar
		return nil, ErrNotConfigured
	}

	base := s.oauth.TokenSource(s.clientCtx(ctx), tok)
	ps := &persistingSource{
		base:   base,
		last:   tok.AccessToken,
		save:   func(t *oauth2.Token) error { return s.save(ctx, userID, t) },
		logger: s.log,
	}
	return oauth2.ReuseTokenSource(tok, ps), nil
}

// RefreshExpiring refresca los tokens que vencen dentro de window.
func (s *Service) RefreshExpiring(ctx context.Context, window time.Duration) (refreshed, failed int, err error) {
	if !s.IsConfigured() {
		return 0, 0, nil
	}
	due, err := s.repo.ListExpiring(ctx, s.now().Add(window))
	if err != nil {
		return 0, 0, err
	}

	for _, st := range due {
		tok, err := s.open(st)
		if err != nil || tok.RefreshToken == "" {
			failed++
			continue
		}
		// forzar refresh aunque el access token siga vigente
		tok.Expiry = s.now().Add(-time.Minute)
		fresh, err := s.oauth.TokenSource(s.clientCtx(ctx), tok).Token()
		if err != nil {
			failed++
			s.log.Warn("token refresh failed", zap.String("user_id", st.UserID), zap.Error(err))
			continue
		}
		if err := s.save(ctx, st.UserID, fresh); err != nil {
			failed++
			s.log.Error("persist refreshed token", zap.String("user_id", st.UserID), zap.Error(err))
			continue
		}
		refreshed++
	}
	return refreshed, failed, nil
}

// Disconnect es idempotente.
func (s *Service) Disconnect(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		if _, gerr := s.repo.Get(ctx, userID); gerr != nil {
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	st, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Status{Connected: false}, nil
	}
	out := Status{Connected: true, Scope: st.Scope}
	if !st.Expiry.IsZero() {
		exp := st.Expiry
		out.ExpiresAt = &exp
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, userID string) (*oauth2.Token, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrNotConnected
	}
	st, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, ErrNotConnected
	}
	return s.open(st)
}

func (s *Service) open(st StoredToken) (*oauth2.Token, error) {
	access, err := s.sealer.Open(st.EncryptedAccess)
	if err != nil {
		return nil, fmt.Errorf("open access token: %w", err)
	}
	tok := &oauth2.Token{
		AccessToken: string(access),
		TokenType:   st.TokenType,
		Expiry:      st.Expiry,
	}
	if len(st.EncryptedRefresh) > 0 {
		refresh, err := s.sealer.Open(st.EncryptedRefresh)
		if err != nil {
			return nil, fmt.Errorf("open refresh token: %w", err)
		}
		tok.RefreshToken = string(refresh)
	}
	return tok, nil
}

func (s *Service) save(ctx context.Context, userID string, tok *oauth2.Token) error {
	access, err := s.sealer.Seal([]byte(tok.AccessToken))
	if err != nil {
		return err
	}
	var refresh []byte
	if tok.RefreshToken != "" {
		if refresh, err = s.sealer.Seal([]byte(tok.RefreshToken)); err != nil {
			return err
		}
	}

	scope, _ := tok.Extra("scope").(string)
	now := s.now()
	st := StoredToken{
		UserID:           userID,
		EncryptedAccess:  access,
		EncryptedRefresh: refresh,
		TokenType:        tok.Type(),
		Expiry:           tok.Expiry,
		Scope:            scope,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if prev, err := s.repo.Get(ctx, userID); err == nil {
		st.CreatedAt = prev.CreatedAt
		if st.Scope == "" {
			st.Scope = prev.Scope
		}
	}
	return s.repo.Upsert(ctx, st)
}

func (s *Service) clientCtx(ctx context.Context) context.Context {
	if s.cfg.HTTPClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.cfg.HTTPClient)
	}
	return ctx
}

// persistingSource guarda el token solo cuando cambió el access token
// (Coinbase rota el refresh token en cada uso).
type persistingSource struct {
	base   oauth2.TokenSource
	save   func(*oauth2.Token) error
	logger *zap.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		if err := p.save(tok); err != nil {
			p.logger.Error("persist rotated token", zap.Error(err))
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}
