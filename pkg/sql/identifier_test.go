package sql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
)

func TestEnsureSafeIdentifier_Accepts(t *testing.T) {
	for _, name := range []string{"tblAcctSpecial", "CustomerNum", "_private", "SAC_Contact1", "a", "PK_Number", "x9"} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, EnsureSafeIdentifier(name))
		})
	}
}

func TestEnsureSafeIdentifier_Rejects(t *testing.T) {
	for _, name := range []string{
		"",
		"1abc",
		"Customer Num",
		"CustomerNum;",
		"Customer'Num",
		`Customer"Num`,
		"[CustomerNum]",
		"dbo.tblPolicies",
		"CustomerNum--",
		"Num-1",
	} {
		t.Run(name, func(t *testing.T) {
			err := EnsureSafeIdentifier(name)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier))
			assert.Equal(t, "Invalid column or table name: "+name, err.Error())
		})
	}
}

func TestEnsureSafeIdentifiers_FirstFailure(t *testing.T) {
	err := EnsureSafeIdentifiers("CustomerNum", "bad name", "also bad;")

	var idErr *apperrors.InvalidIdentifierError
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, "bad name", idErr.Name)
}
