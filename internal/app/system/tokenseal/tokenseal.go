// internal/app/system/tokenseal/tokenseal.go
//
// Package tokenseal encrypts API bearer tokens before they are written to
// the sessions collection, so a database dump does not leak live tokens.
package tokenseal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
	info      = "learnportal api token seal v1"
)

var (
	// ErrShortSecret is returned when the derivation secret is empty.
	ErrShortSecret = errors.New("tokenseal: secret is empty")
	// ErrOpen is returned when a sealed value is corrupt or sealed under another key.
	ErrOpen = errors.New("tokenseal: cannot open sealed value")
)

// Sealer seals and opens short strings with a key derived from a secret.
type Sealer struct {
	key [keySize]byte
}

// New derives a sealing key from secret using HKDF-SHA256.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, ErrShortSecret
	}
	s := &Sealer{}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("tokenseal: derive key: %w", err)
	}
	return s, nil
}

// Seal encrypts plaintext. Output is base64url(nonce || box).
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("tokenseal: nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}
