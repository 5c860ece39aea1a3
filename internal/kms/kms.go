// Package kms encrypts the optional broker API key before it is persisted.
//
// The Gateway never fails a submission: any backend problem is logged and
// reported as ok == false so the caller stores a null ciphertext instead.
package kms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PYTHTRADER/findtrader/internal/config"
)

// Encrypter is a key-management backend. Implementations return base64 ciphertext.
type Encrypter interface {
	Encrypt(ctx context.Context, plaintext []byte) (string, error)
}

// Gateway wraps an Encrypter with degrade-on-failure semantics.
type Gateway struct {
	enc Encrypter
	log *slog.Logger
}

// NewGateway returns a gateway over enc. A nil enc disables encryption.
func NewGateway(enc Encrypter, log *slog.Logger) *Gateway {
	return &Gateway{enc: enc, log: log.With("component", "kms")}
}

// Encrypt returns the ciphertext and true, or "" and false on any failure.
// The plaintext is never returned or logged.
func (g *Gateway) Encrypt(ctx context.Context, plaintext string) (string, bool) {
	if g == nil || g.enc == nil {
		if g != nil {
			g.log.Warn("kms_encrypt_skipped", "reason", "encryption disabled")
		}
		return "", false
	}

	ct, err := g.enc.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		g.log.Error("kms_encrypt_failed", "error", err.Error())
		return "", false
	}
	if ct == "" {
		g.log.Error("kms_encrypt_failed", "error", "empty ciphertext")
		return "", false
	}
	return ct, true
}

// New builds the backend selected by cfg.Provider: "gcp", "local" or "none".
func New(ctx context.Context, cfg config.KMSConfig) (Encrypter, error) {
	switch cfg.Provider {
	case "gcp":
		c, err := NewCloudKMS(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "local":
		l, err := NewLocalAESGCM(cfg.LocalKey)
		if err != nil {
			return nil, err
		}
		return l, nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown kms provider %q", cfg.Provider)
	}
}
