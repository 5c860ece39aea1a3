// Package identity resolves the caller behind a bearer token.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/config"
)

// Verifier turns an Authorization header into a user id.
type Verifier interface {
	Verify(ctx context.Context, authorization string) (string, error)
}

// Claims are the token claims the API reads. UID is accepted for tokens
// minted by identity providers that keep the user id outside "sub".
type Claims struct {
	UID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HMAC-signed tokens.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier builds a verifier from auth settings. Issuer and audience are
// enforced only when configured.
func NewJWTVerifier(cfg config.AuthConfig) (*JWTVerifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &JWTVerifier{secret: []byte(cfg.JWTSecret), parser: jwt.NewParser(opts...)}, nil
}

// Verify checks the header and token and returns the user id. It has no side effects.
func (v *JWTVerifier) Verify(_ context.Context, authorization string) (string, error) {
	raw, err := bearerToken(authorization)
	if err != nil {
		return "", err
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return "", apperr.Wrap(err, apperr.Unauthenticated, msg)
	}
	if !token.Valid {
		return "", apperr.New(apperr.Unauthenticated, "invalid token")
	}

	uid := claims.Subject
	if uid == "" {
		uid = claims.UID
	}
	if uid == "" {
		return "", apperr.New(apperr.Unauthenticated, "token has no subject")
	}
	return uid, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.New(apperr.Unauthenticated, "missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return "", apperr.New(apperr.Unauthenticated, "authorization header must be Bearer <token>")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperr.New(apperr.Unauthenticated, "authorization header must be Bearer <token>")
	}
	return token, nil
}
