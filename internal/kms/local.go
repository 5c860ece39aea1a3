package kms

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const localKeyInfo = "findtrader/broker-api-key/v1"

// LocalAESGCM encrypts with AES-256-GCM under a key derived from a configured
// secret. Output is base64(nonce || ciphertext). Intended for development.
type LocalAESGCM struct {
	aead cipher.AEAD
}

// NewLocalAESGCM derives the data key from secret with HKDF-SHA256.
func NewLocalAESGCM(secret string) (*LocalAESGCM, error) {
	if secret == "" {
		return nil, errors.New("local kms key is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(localKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &LocalAESGCM{aead: aead}, nil
}

func (l *LocalAESGCM) Encrypt(ctx context.Context, plaintext []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	nonce := make([]byte, l.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	out := l.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func (l *LocalAESGCM) Decrypt(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, err
	}
	ns := l.aead.NonceSize()
	if len(raw) < ns {
		return nil, errors.New("ciphertext too short")
	}
	return l.aead.Open(nil, raw[:ns], raw[ns:], nil)
}
