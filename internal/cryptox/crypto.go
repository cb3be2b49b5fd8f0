// Package cryptox seals long-lived credentials (refresh tokens) before they
// are written to the database. Sealing uses AES-256-GCM with a key derived
// from the configured application secret.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mberzonis/carelink/internal/common"
	"golang.org/x/crypto/argon2"
)

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// DeriveSealKey stretches the application secret into a 32-byte AES key.
// The salt must be stable across restarts or previously sealed tokens
// become unreadable.
func DeriveSealKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// Sealer encrypts and decrypts short strings with AES-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer constructs a Sealer from a 16-, 24- or 32-byte AES key.
func NewSealer(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext).
// A fresh random nonce is generated per call.
func (s *Sealer) Seal(plaintext string) string {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed)
}

// Open decrypts a value produced by Seal. Tampered or truncated input
// yields ErrMalformedCiphertext.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	if len(raw) < s.aead.NonceSize() {
		return "", ErrMalformedCiphertext
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	return string(plaintext), nil
}
