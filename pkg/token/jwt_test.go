package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := NewJWTManager("test-secret", 1)

	tok, err := m.GenerateToken(42, "alice", "USER")
	require.NoError(t, err)

	claims, err := m.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "USER", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	tok, err := NewJWTManager("other-secret", 1).GenerateToken(1, "bob", "USER")
	require.NoError(t, err)

	_, err = NewJWTManager("test-secret", 1).VerifyToken(tok)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret", 1)
	claims := CustomClaims{
		UserID:   7,
		Username: "carol",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsOtherIssuer(t *testing.T) {
	claims := CustomClaims{
		UserID: 3,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewJWTManager("test-secret", 1).VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenUsesManagerClock(t *testing.T) {
	m := NewJWTManager("test-secret", 1)
	tok, err := m.GenerateToken(9, "dave", "USER")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTManagerDefaultsLifetime(t *testing.T) {
	assert.Equal(t, 24*time.Hour, NewJWTManager("s", 0).TokenDuration())
}
