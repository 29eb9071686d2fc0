package coinbaseauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/adapters/cache"
)

type testRepo struct {
	mu     sync.Mutex
	tokens map[string]StoredToken
	writes int
}

func newTestRepo() *testRepo { return &testRepo{tokens: map[string]StoredToken{}} }

func (r *testRepo) Upsert(ctx context.Context, t StoredToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.UserID] = t
	r.writes++
	return nil
}

func (r *testRepo) Get(ctx context.Context, userID string) (StoredToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[userID]
	if !ok {
		return StoredToken{}, errors.New("not found")
	}
	return t, nil
}

func (r *testRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[userID]; !ok {
		return errors.New("not found")
	}
	delete(r.tokens, userID)
	return nil
}

func (r *testRepo) ListExpiring(ctx context.Context, before time.Time) ([]StoredToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []StoredToken
	for _, t := range r.tokens {
		if len(t.EncryptedRefresh) > 0 && !t.Expiry.IsZero() && t.Expiry.Before(before) {
			out = append(out, t)
		}
	}
	return out, nil
}

type plainSealer struct{}

func (plainSealer) Seal(p []byte) ([]byte, error) { return append([]byte("x"), p...), nil }
func (plainSealer) Open(p []byte) ([]byte, error) { return p[1:], nil }

// tokenServer emite access tokens numerados.
func tokenServer(t *testing.T) (*httptest.Server, *int) {
	n := 0
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		n++
		cur := n
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + string(rune('0'+cur)),
			"refresh_token": "refresh-" + string(rune('0'+cur)),
			"token_type":    "bearer",
			"expires_in":    3600,
			"scope":         "wallet:accounts:read",
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &n
}

func newSvc(t *testing.T) (*Service, *testRepo, *int) {
	srv, n := tokenServer(t)
	repo := newTestRepo()
	svc := NewService(repo, cache.NewMemoryStore(), plainSealer{}, Config{
		ClientID:    "cid",
		RedirectURL: "http://localhost/api/oauth/coinbase/callback",
		TokenURL:    srv.URL,
		FrontendURL: "http://app.local/",
		HTTPClient:  srv.Client(),
	}, nil)
	return svc, repo, n
}

func stateOf(t *testing.T, raw string) string {
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestCallback_ExchangesAndStoresSealedToken(t *testing.T) {
	svc, repo, _ := newSvc(t)
	ctx := context.Background()

	authURL, err := svc.AuthorizeURL(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, authURL, "client_id=cid")
	state := stateOf(t, authURL)
	require.NotEmpty(t, state)

	userID, err := svc.Callback(ctx, "the-code", state)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	st := repo.tokens["u1"]
	assert.Equal(t, "xaccess-1", string(st.EncryptedAccess))
	assert.Equal(t, "wallet:accounts:read", st.Scope)
	assert.Equal(t, "http://app.local/trade?connected=1", svc.ConnectedRedirect())
}

func TestCallback_StateIsOneShot(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	authURL, err := svc.AuthorizeURL(ctx, "u1")
	require.NoError(t, err)
	state := stateOf(t, authURL)

	_, err = svc.Callback(ctx, "code", state)
	require.NoError(t, err)

	_, err = svc.Callback(ctx, "code", state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCallback_UnknownStateRejected(t *testing.T) {
	svc, repo, n := newSvc(t)
	_, err := svc.Callback(context.Background(), "code", "forged")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Empty(t, repo.tokens)
	assert.Equal(t, 0, *n)
}

func TestTokenSource_PersistsRotatedToken(t *testing.T) {
	svc, repo, _ := newSvc(t)
	ctx := context.Background()

	authURL, _ := svc.AuthorizeURL(ctx, "u1")
	_, err := svc.Callback(ctx, "code", stateOf(t, authURL))
	require.NoError(t, err)

	// vencido: el próximo Token() refresca
	st := repo.tokens["u1"]
	st.Expiry = time.Now().Add(-time.Hour)
	repo.tokens["u1"] = st
	writes := repo.writes

	ts, err := svc.TokenSource(ctx, "u1")
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-2", tok.AccessToken)
	assert.Equal(t, writes+1, repo.writes)

	// token vigente: no se vuelve a escribir
	_, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, writes+1, repo.writes)
	assert.Equal(t, "xrefresh-2", string(repo.tokens["u1"].EncryptedRefresh))
}

func TestTokenSource_NotConnected(t *testing.T) {
	svc, _, _ := newSvc(t)
	_, err := svc.TokenSource(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestRefreshExpiring(t *testing.T) {
	svc, repo, _ := newSvc(t)
	ctx := context.Background()

	authURL, _ := svc.AuthorizeURL(ctx, "u1")
	_, err := svc.Callback(ctx, "code", stateOf(t, authURL))
	require.NoError(t, err)

	// 1h de vida: fuera de una ventana de 10 min
	ok, failed, err := svc.RefreshExpiring(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, ok+failed)

	ok, failed, err = svc.RefreshExpiring(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 0, failed)
	assert.Equal(t, "xaccess-2", string(repo.tokens["u1"].EncryptedAccess))
}

func TestDisconnectAndStatus(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	st, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, st.Connected)

	authURL, _ := svc.AuthorizeURL(ctx, "u1")
	_, err = svc.Callback(ctx, "code", stateOf(t, authURL))
	require.NoError(t, err)

	st, err = svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, st.Connected)
	require.NotNil(t, st.ExpiresAt)

	require.NoError(t, svc.Disconnect(ctx, "u1"))
	require.NoError(t, svc.Disconnect(ctx, "u1"))
	st, _ = svc.Status(ctx, "u1")
	assert.False(t, st.Connected)
}

func TestAuthorizeURL_NotConfigured(t *testing.T) {
	svc := NewService(newTestRepo(), cache.NewMemoryStore(), plainSealer{}, Config{}, nil)
	_, err := svc.AuthorizeURL(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
