package testhelpers

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// TestTokenSecret and TestTokenIssuer match the token manager built by
// handler tests.
const (
	TestTokenSecret = "test-secret-key"
	TestTokenIssuer = "sac-engine"
)

type testClaims struct {
	jwt.RegisteredClaims
	User models.User `json:"user"`
}

// GenerateTestToken signs a session token for user with the test secret,
// valid for one hour.
func GenerateTestToken(t *testing.T, user *models.User) string {
	t.Helper()

	now := time.Now()
	claims := testClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    TestTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		User: *user,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestTokenSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}
