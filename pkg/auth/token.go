package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer or
// expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and verifies session tokens with a shared secret.
type TokenManager struct {
	secret   []byte
	issuer   string
	validity time.Duration
	now      func() time.Time
}

// NewTokenManager returns a manager for HS256 tokens valid for validity.
func NewTokenManager(secret, issuer string, validity time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("SECRET_KEY is required to sign session tokens")
	}
	if validity <= 0 {
		return nil, fmt.Errorf("token validity must be positive")
	}
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		validity: validity,
		now:      time.Now,
	}, nil
}

// Validity returns the lifetime of newly issued tokens.
func (m *TokenManager) Validity() time.Duration {
	return m.validity
}

// Issue signs a token for user and returns it with its expiry.
func (m *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.validity)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		User: *user,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}

// Parse verifies tokenString and returns its claims.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
