package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/config"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is returned by login, me and refresh.
type SessionResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// AuthHandler handles sign-in and session endpoints.
type AuthHandler struct {
	authService auth.AuthService
	auditor     *audit.SecurityAuditor
	cookies     auth.CookieSettings
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService auth.AuthService, auditor *audit.SecurityAuditor, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		auditor:     auditor,
		cookies:     auth.DeriveCookieSettings(cfg.BaseURL, cfg.CookieDomain),
		logger:      logger.Named("auth_handler"),
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("GET /auth/me", authMiddleware.RequireAuth(h.Me))
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("POST /auth/refresh", authMiddleware.RequireAuth(h.Refresh))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rejectBody(w, h.logger, err, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		badRequest(w, h.logger, "Missing email or password")
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			h.auditor.LogLoginFailure(r.Context(), req.Email, ClientIP(r))
		}
		WriteServiceError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt, h.cookies)
	h.logger.Info("User signed in", zap.Int64("user_id", session.User.ID))

	respond(w, h.logger, SessionResponse{
		Message: "Sign in successful",
		User:    session.User,
		Token:   session.Token,
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireClaimsFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, apperrors.ErrUnauthorized)
		return
	}
	token, _ := auth.GetToken(r.Context())

	respond(w, h.logger, SessionResponse{
		Message: "User authenticated",
		User:    &claims.User,
		Token:   token,
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookies)
	respond(w, h.logger, SessionResponse{Message: "Logged out successfully"})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetClaims(r.Context())

	session, err := h.authService.Refresh(claims)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt, h.cookies)
	respond(w, h.logger, SessionResponse{Message: "Token refreshed", Token: session.Token})
}
