package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/config"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(sub string) Claims {
	return Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		Issuer:    "findtrader",
	}}
}

func TestNewJWTVerifier_RequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier(config.AuthConfig{})
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	v, err := NewJWTVerifier(config.AuthConfig{JWTSecret: testSecret, Issuer: "findtrader"})
	require.NoError(t, err)

	uidOnly := Claims{UID: "user-from-uid", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		Issuer:    "findtrader",
	}}
	expired := validClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := validClaims("user-1")
	wrongIssuer.Issuer = "someone-else"
	noExpiry := validClaims("user-1")
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name    string
		header  string
		wantUID string
		wantErr bool
	}{
		{"valid subject", "Bearer " + sign(t, testSecret, validClaims("user-1")), "user-1", false},
		{"uid claim fallback", "Bearer " + sign(t, testSecret, uidOnly), "user-from-uid", false},
		{"missing header", "", "", true},
		{"wrong scheme", "Basic abc", "", true},
		{"bearer without token", "Bearer ", "", true},
		{"garbage token", "Bearer not-a-jwt", "", true},
		{"wrong secret", "Bearer " + sign(t, "other", validClaims("user-1")), "", true},
		{"expired", "Bearer " + sign(t, testSecret, expired), "", true},
		{"wrong issuer", "Bearer " + sign(t, testSecret, wrongIssuer), "", true},
		{"no expiry", "Bearer " + sign(t, testSecret, noExpiry), "", true},
		{"no subject", "Bearer " + sign(t, testSecret, validClaims("")), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, err := v.Verify(context.Background(), tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
				assert.Empty(t, uid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, uid)
		})
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	v, err := NewJWTVerifier(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("user-1")).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "Bearer "+tok)
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
}
