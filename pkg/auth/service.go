package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
)

// Session is a freshly issued token for a user.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// Login checks the credentials of an active user and issues a token.
	// Unknown users and wrong passwords both return
	// apperrors.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*Session, error)

	// ValidateRequest extracts and validates a JWT from the request.
	// It checks for the token in:
	//   1. Cookie named "session" (browser clients)
	//   2. Authorization header with "Bearer" scheme (API clients)
	// Returns the validated claims, the raw token string, or an error.
	ValidateRequest(r *http.Request) (*Claims, string, error)

	// Refresh issues a new token for the user in claims.
	Refresh(claims *Claims) (*Session, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, tokens *TokenManager, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger.Named("auth"),
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetActiveByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Info("Login rejected: no active user", zap.String("email", email))
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, rehash := VerifyPassword(user.PasswordHash, password)
	if !ok {
		s.logger.Info("Login rejected: wrong password", zap.Int64("user_id", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}

	if rehash {
		if err := s.upgradePassword(ctx, user.ID, password); err != nil {
			s.logger.Warn("Failed to rehash legacy password",
				zap.Int64("user_id", user.ID),
				zap.Error(err))
		}
	}

	return s.issue(user)
}

func (s *authService) upgradePassword(ctx context.Context, userID int64, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Info("Rehashed legacy plaintext password", zap.Int64("user_id", userID))
	return nil
}

func (s *authService) Refresh(claims *Claims) (*Session, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	user := claims.User
	return s.issue(&user)
}

func (s *authService) issue(user *models.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: expires}, nil
}

// ValidateRequest extracts and validates a JWT from the request.
func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	var tokenString string
	var tokenSource string

	// Try cookie first (browser clients)
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		tokenString = cookie.Value
		tokenSource = "cookie"
	} else {
		// Fallback to Authorization header (API clients)
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.logger.Debug("No JWT found in request",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method))
			return nil, "", ErrMissingAuthorization
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.logger.Debug("Invalid Authorization header format",
				zap.String("path", r.URL.Path))
			return nil, "", ErrInvalidAuthFormat
		}
		tokenString = parts[1]
		tokenSource = "header"
	}

	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		s.logger.Debug("JWT validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("token_source", tokenSource))
		return nil, "", err
	}

	return claims, tokenString, nil
}
