package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ekaya-inc/sac-engine/pkg/jsonutil"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// RecipientRequiredFields must be filled on every non-blank distribution row.
var RecipientRequiredFields = []string{"CustomerNum", "RecipCat", "DistVia", "AttnTo", "EMailAddress"}

// HCMRequiredFields must be filled on every HCM user row.
var HCMRequiredFields = []string{"UserName", "UserTitle", "UserEmail", "UserAction", "LanID"}

const telephoneDigits = 10

// CleanRecipientRows drops rows where every required recipient field is
// blank (empty grid lines from the UI) and validates the rest.
func CleanRecipientRows(rows []*models.Row) ([]*models.Row, []models.ValidationError) {
	cleaned := make([]*models.Row, 0, len(rows))
	for _, row := range rows {
		if anyFilled(row, RecipientRequiredFields) {
			cleaned = append(cleaned, row)
		}
	}

	var errs []models.ValidationError
	for _, row := range cleaned {
		for _, field := range RecipientRequiredFields {
			if !models.RowHasValue(row, field) {
				errs = append(errs, models.ValidationError{
					Field:   field,
					Code:    models.CodeRequired,
					Message: fmt.Sprintf(" You've left a blank a mandatory field :%s. Please check your entries.", field),
				})
			}
		}
	}

	return cleaned, errs
}

// ValidateHCMUsers checks mandatory fields and telephone length per row.
// Rows are numbered from 1 in messages.
func ValidateHCMUsers(rows []*models.Row) []models.ValidationError {
	var errs []models.ValidationError

	for i, row := range rows {
		idx := i + 1
		for _, field := range HCMRequiredFields {
			if !models.RowHasValue(row, field) {
				errs = append(errs, models.ValidationError{
					Field:   field,
					Code:    models.CodeRequired,
					Message: fmt.Sprintf("%s is mandatory for HCM user row %d.", field, idx),
				})
			}
		}

		digits := digitsOf(get(row, "TelNum"))
		if digits != "" && len(digits) != telephoneDigits {
			errs = append(errs, models.ValidationError{
				Field:   "TelNum",
				Code:    models.CodeInvalidLength,
				Message: fmt.Sprintf("Telephone number must have 10 digits for row %d.", idx),
			})
		}
	}

	return errs
}

func anyFilled(row *models.Row, fields []string) bool {
	for _, field := range fields {
		if models.RowHasValue(row, field) {
			return true
		}
	}
	return false
}

func digitsOf(v any) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, jsonutil.FlexibleString(v))
}
