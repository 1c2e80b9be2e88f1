package sql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

var accountFilters = []string{"CustomerNum", "CustomerName", "Stage", "isSubmitted", "ServLevel", "AcctOwner"}

func TestSanitizeFilters_Empty(t *testing.T) {
	filters, err := SanitizeFilters(nil, accountFilters)
	require.NoError(t, err)
	assert.Equal(t, 0, filters.Len())

	filters, err = SanitizeFilters(models.NewRow(), accountFilters)
	require.NoError(t, err)
	assert.Equal(t, 0, filters.Len())
}

func TestSanitizeFilters_KeepsAllowedInOrder(t *testing.T) {
	raw := models.RowOf("Stage", "Active", "CustomerNum", "C1")

	filters, err := SanitizeFilters(raw, accountFilters)
	require.NoError(t, err)

	assert.Equal(t, []string{"Stage", "CustomerNum"}, models.Columns(filters))
	stage, _ := filters.Get("Stage")
	assert.Equal(t, "Active", stage)
}

func TestSanitizeFilters_RejectsEveryUnknownField(t *testing.T) {
	raw := models.RowOf("zeta", "1", "CustomerNum", "C1", "alpha", "2")

	_, err := SanitizeFilters(raw, accountFilters)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidFilter))
	assert.Equal(t, "Invalid filter field(s): alpha, zeta", err.Error())

	var filterErr *apperrors.InvalidFilterError
	require.True(t, errors.As(err, &filterErr))
	assert.Equal(t, []string{"alpha", "zeta"}, filterErr.Fields)
}

func TestSanitizeFilters_DoesNotModifyInput(t *testing.T) {
	raw := models.RowOf("CustomerNum", "C1")

	filters, err := SanitizeFilters(raw, accountFilters)
	require.NoError(t, err)

	filters.Set("Stage", "x")
	assert.Equal(t, 1, raw.Len())
}

func TestSanitizeFilters_NoAllowListStillChecksIdentifiers(t *testing.T) {
	filters, err := SanitizeFilters(models.RowOf("CustNum", "C1", "UserName", "bob"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, filters.Len())

	_, err = SanitizeFilters(models.RowOf("CustNum; DROP", "C1"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier))
}

func TestSanitizeFilters_ResultIsIntersection(t *testing.T) {
	allowed := []string{"CustomerNum", "MthNum"}
	for _, keys := range [][]string{{"CustomerNum"}, {"MthNum", "CustomerNum"}, {}} {
		raw := models.NewRow()
		for _, k := range keys {
			raw.Set(k, "v")
		}
		filters, err := SanitizeFilters(raw, allowed)
		require.NoError(t, err)
		assert.ElementsMatch(t, keys, models.Columns(filters))
	}
}
