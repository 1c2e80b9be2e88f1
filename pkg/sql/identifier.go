package sql

import (
	"regexp"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EnsureSafeIdentifier rejects any table or column name that is not a
// plain identifier. Quoted or bracketed names are rejected, never escaped.
func EnsureSafeIdentifier(name string) error {
	if name == "" || !identifierPattern.MatchString(name) {
		return &apperrors.InvalidIdentifierError{Name: name}
	}
	return nil
}

// EnsureSafeIdentifiers checks every name and returns the first failure.
func EnsureSafeIdentifiers(names ...string) error {
	for _, name := range names {
		if err := EnsureSafeIdentifier(name); err != nil {
			return err
		}
	}
	return nil
}
