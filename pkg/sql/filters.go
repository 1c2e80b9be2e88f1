package sql

import (
	"slices"
	"sort"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// SanitizeFilters restricts raw query parameters to an allow-list.
//
// An empty or nil raw mapping yields an empty filter. When allowed is
// non-nil, every key outside it is collected and reported together in an
// InvalidFilterError; unknown keys are never silently dropped. Every
// retained key must also be a safe identifier. The input is not modified.
func SanitizeFilters(raw *models.Row, allowed []string) (*models.Row, error) {
	filters := models.NewRow()
	if raw == nil || raw.Len() == 0 {
		return filters, nil
	}

	if allowed != nil {
		var invalid []string
		for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
			if !slices.Contains(allowed, pair.Key) {
				invalid = append(invalid, pair.Key)
			}
		}
		if len(invalid) > 0 {
			sort.Strings(invalid)
			return nil, &apperrors.InvalidFilterError{Fields: invalid}
		}
	}

	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		if err := EnsureSafeIdentifier(pair.Key); err != nil {
			return nil, err
		}
		filters.Set(pair.Key, pair.Value)
	}
	return filters, nil
}
