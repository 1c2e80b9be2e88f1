package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// HashPassword returns the bcrypt hash stored in tblUsers.Password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks plain against a stored password. Rows created
// before hashing hold plaintext; a matching plaintext row reports rehash so
// the caller can replace it with a bcrypt hash.
func VerifyPassword(stored, plain string) (ok, rehash bool) {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}
	if stored == "" {
		return false, false
	}
	match := subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
	return match, match
}

func isBcryptHash(s string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
