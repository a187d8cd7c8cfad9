// Package token issues and verifies the JSON Web Tokens that back user sessions.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into every session token and required on verification.
const Issuer = "effisense"

// ErrInvalidToken covers every reason a session token is rejected.
var ErrInvalidToken = errors.New("invalid session token")

// JWTManager signs and verifies HS256 session tokens.
type JWTManager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// CustomClaims identifies the session's user.
type CustomClaims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a JWTManager whose tokens live for lifetimeHours (24 when not positive).
func NewJWTManager(secret string, lifetimeHours int) *JWTManager {
	if lifetimeHours <= 0 {
		lifetimeHours = 24
	}
	return &JWTManager{
		secret:   []byte(secret),
		lifetime: time.Duration(lifetimeHours) * time.Hour,
		now:      time.Now,
	}
}

// TokenDuration is the lifetime of a fresh token; the session cookie uses the same.
func (m *JWTManager) TokenDuration() time.Duration {
	return m.lifetime
}

// GenerateToken signs a session token for the user.
func (m *JWTManager) GenerateToken(userID uint, username, role string) (string, error) {
	issuedAt := m.now()
	claims := CustomClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, issuer and expiry and returns the claims.
// Every failure wraps ErrInvalidToken.
func (m *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
