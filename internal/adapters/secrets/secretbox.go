package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	ErrInvalidKey = errors.New("secrets: key must be 32 bytes (base64)")
	ErrOpen       = errors.New("secrets: cannot open sealed value")
)

// Box sella secretos en reposo (claves privadas CDP, tokens OAuth).
// Formato: nonce(24) || secretbox.Seal(...).
type Box struct {
	key [keySize]byte
}

func New(key [keySize]byte) *Box {
	return &Box{key: key}
}

// FromBase64 acepta base64 estándar o url-safe.
func FromBase64(s string) (*Box, error) {
	s = strings.TrimSpace(s)
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(s)
		if err != nil {
			return nil, ErrInvalidKey
		}
	}
	if len(raw) != keySize {
		return nil, ErrInvalidKey
	}
	var k [keySize]byte
	copy(k[:], raw)
	return New(k), nil
}

// Ephemeral genera una clave aleatoria (modo dev: lo sellado no sobrevive un reinicio).
func Ephemeral() (*Box, error) {
	var k [keySize]byte
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		return nil, fmt.Errorf("secrets: random key: %w", err)
	}
	return New(k), nil
}

func (b *Box) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("secrets: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &b.key), nil
}

func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, ErrOpen
	}
	return out, nil
}
