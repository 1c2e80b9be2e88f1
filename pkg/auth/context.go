package auth

import (
	"context"
	"fmt"
)

// GetUserIDFromContext extracts the user ID from JWT claims in the context.
// Returns empty string if not authenticated or claims are missing.
func GetUserIDFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Subject
}

// GetRoleFromContext returns the signed-in user's role name, or empty string.
// Callers map it with validation.ParseRole, which defaults to the lowest tier.
func GetRoleFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.User.Role
}

// RequireClaimsFromContext returns the claims or an error when the request
// was not authenticated.
func RequireClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return nil, fmt.Errorf("authentication required: no claims in context")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing user ID in JWT claims")
	}
	return claims, nil
}
