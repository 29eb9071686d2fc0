package coinbase

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var ErrInvalidKey = errors.New("coinbase: invalid CDP private key")

const jwtTTL = 120 * time.Second

// Authorizer produce los headers de autenticación para un request privado.
type Authorizer interface {
	Headers(ctx context.Context, method, rawURL string) (map[string]string, error)
}

// BearerAuthorizer usa un access token OAuth.
type BearerAuthorizer struct {
	Source oauth2.TokenSource
}

func (a BearerAuthorizer) Headers(ctx context.Context, method, rawURL string) (map[string]string, error) {
	if a.Source == nil {
		return nil, errors.New("coinbase: nil token source")
	}
	tok, err := a.Source.Token()
	if err != nil {
		return nil, fmt.Errorf("coinbase: oauth token: %w", err)
	}
	return map[string]string{"Authorization": tok.Type() + " " + tok.AccessToken}, nil
}

// KeyAuthorizer firma cada request con un JWT ES256 (CDP API key).
type KeyAuthorizer struct {
	keyName string
	key     *ecdsa.PrivateKey
	now     func() time.Time
}

func NewKeyAuthorizer(keyName, privateKeyPEM string) (*KeyAuthorizer, error) {
	key, err := parseKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	return &KeyAuthorizer{
		keyName: strings.TrimSpace(keyName),
		key:     key,
		now:     time.Now,
	}, nil
}

// ValidatePrivateKey se usa al registrar keys para rechazar PEMs inservibles.
func ValidatePrivateKey(privateKeyPEM string) error {
	_, err := parseKey(privateKeyPEM)
	return err
}

func parseKey(privateKeyPEM string) (*ecdsa.PrivateKey, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

func (a *KeyAuthorizer) Headers(ctx context.Context, method, rawURL string) (map[string]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("coinbase: parse url: %w", err)
	}
	tok, err := a.Token(method + " " + u.Host + u.Path)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + tok}, nil
}

// Token firma un JWT para uri ("GET api.coinbase.com/api/v3/brokerage/accounts").
// uri vacío sirve para el websocket.
func (a *KeyAuthorizer) Token(uri string) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"iss": "cdp",
		"sub": a.keyName,
		"nbf": now.Unix(),
		"exp": now.Add(jwtTTL).Unix(),
	}
	if uri != "" {
		claims["uri"] = uri
	}

	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	t.Header["kid"] = a.keyName
	t.Header["nonce"] = nonce()

	s, err := t.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("coinbase: sign jwt: %w", err)
	}
	return s, nil
}

func nonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
