package coinbase

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testKeyPEM(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})), key
}

func TestKeyAuthorizer_SignsCDPClaims(t *testing.T) {
	pemStr, key := testKeyPEM(t)
	a, err := NewKeyAuthorizer("organizations/o/apiKeys/k", pemStr)
	require.NoError(t, err)
	fixed := time.Unix(1_700_000_000, 0)
	a.now = func() time.Time { return fixed }

	h, err := a.Headers(context.Background(), "GET", "https://api.coinbase.com/api/v3/brokerage/accounts")
	require.NoError(t, err)
	raw := strings.TrimPrefix(h["Authorization"], "Bearer ")

	parser := jwt.NewParser(jwt.WithTimeFunc(func() time.Time { return fixed }))
	tok, err := parser.Parse(raw, func(t *jwt.Token) (any, error) { return &key.PublicKey, nil })
	require.NoError(t, err)

	assert.Equal(t, "ES256", tok.Method.Alg())
	assert.Equal(t, "organizations/o/apiKeys/k", tok.Header["kid"])
	assert.NotEmpty(t, tok.Header["nonce"])

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "cdp", claims["iss"])
	assert.Equal(t, "organizations/o/apiKeys/k", claims["sub"])
	assert.Equal(t, "GET api.coinbase.com/api/v3/brokerage/accounts", claims["uri"])
	assert.EqualValues(t, fixed.Add(jwtTTL).Unix(), claims["exp"])
}

func TestValidatePrivateKey(t *testing.T) {
	pemStr, _ := testKeyPEM(t)
	assert.NoError(t, ValidatePrivateKey(pemStr))
	assert.ErrorIs(t, ValidatePrivateKey("not a key"), ErrInvalidKey)
}

func TestBearerAuthorizer(t *testing.T) {
	a := BearerAuthorizer{Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc", TokenType: "Bearer"})}
	h, err := a.Headers(context.Background(), "GET", "https://x/y")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", h["Authorization"])
}
