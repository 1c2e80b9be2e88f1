package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

func TestGetUserIDFromContext(t *testing.T) {
	assert.Empty(t, GetUserIDFromContext(context.Background()))

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}}
	ctx := WithClaims(context.Background(), claims, "tok")
	assert.Equal(t, "42", GetUserIDFromContext(ctx))

	token, ok := GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok", token)
}

func TestGetRoleFromContext(t *testing.T) {
	assert.Empty(t, GetRoleFromContext(context.Background()))

	claims := &Claims{User: models.User{ID: 1, Role: "Director"}}
	ctx := WithClaims(context.Background(), claims, "")
	assert.Equal(t, "Director", GetRoleFromContext(ctx))
}

func TestRequireClaimsFromContext(t *testing.T) {
	_, err := RequireClaimsFromContext(context.Background())
	assert.ErrorContains(t, err, "authentication required")

	ctx := WithClaims(context.Background(), &Claims{}, "")
	_, err = RequireClaimsFromContext(ctx)
	assert.ErrorContains(t, err, "missing user ID")

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}}
	got, err := RequireClaimsFromContext(WithClaims(context.Background(), claims, ""))
	require.NoError(t, err)
	assert.Same(t, claims, got)
}
