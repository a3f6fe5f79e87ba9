// Package sealer issues and verifies opaque admin session tokens: the
// username and expiry are AES-GCM sealed under a server-side key, so the
// token carries no readable structure and cannot be forged without the key.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

type Sealer struct {
	aead cipher.AEAD
}

// New builds a Sealer from a base64-encoded 32-byte key.
func New(encodedKey string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("session key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Sealer{aead: aead}, nil
}

// Seal produces an opaque session token for the given user and expiry.
func (s *Sealer) Seal(username string, expiresAt time.Time) (string, error) {
	plaintext := []byte(username + ":" + strconv.FormatInt(expiresAt.Unix(), 10))

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// Open verifies a token and returns the sealed username and expiry.
// It does not check whether the expiry has passed; that is the caller's rule.
func (s *Sealer) Open(token string) (string, time.Time, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed token")
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", time.Time{}, fmt.Errorf("malformed token")
	}

	pt, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid token")
	}

	idx := strings.LastIndex(string(pt), ":")
	if idx < 0 {
		return "", time.Time{}, fmt.Errorf("invalid token format")
	}

	unix, err := strconv.ParseInt(string(pt)[idx+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid token format")
	}

	return string(pt)[:idx], time.Unix(unix, 0), nil
}
