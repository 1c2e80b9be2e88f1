package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/jsonutil"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// Request shapes checked per row before a write. Columns not named here
// pass through to the table unchanged.

type frequencyEntry struct {
	CustomerNum string `validate:"required"`
	MthNum      int    `validate:"gte=1,lte=12"`
}

type distributionEntry struct {
	EMailAddress string `validate:"omitempty,email"`
}

type hcmUserEntry struct {
	UserEmail string `validate:"omitempty,email"`
}

// checkShape validates entry for row number idx (from 1) and converts
// validator failures into field errors.
func checkShape(entry any, idx int) []models.ValidationError {
	err := validate.Struct(entry)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []models.ValidationError{{Code: models.CodeInvalidFormat, Message: err.Error()}}
	}

	out := make([]models.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, models.ValidationError{
			Field:   fe.Field(),
			Code:    shapeCode(fe.Tag()),
			Message: shapeMessage(fe, idx),
		})
	}
	return out
}

func shapeCode(tag string) string {
	if tag == "required" {
		return models.CodeRequired
	}
	return models.CodeInvalidFormat
}

func shapeMessage(fe validator.FieldError, idx int) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required for row %d.", fe.Field(), idx)
	case "email":
		return fmt.Sprintf("%s is not a valid email address for row %d.", fe.Field(), idx)
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 1 and 12 for row %d.", fe.Field(), idx)
	default:
		return fmt.Sprintf("%s failed %s for row %d.", fe.Field(), fe.Tag(), idx)
	}
}

// checkFrequencyRows validates frequency entries and stores CustomerNum as
// text and MthNum as an integer.
func checkFrequencyRows(rows []*models.Row) error {
	var errs []models.ValidationError
	for i, row := range rows {
		customer := strings.TrimSpace(jsonutil.FlexibleString(get(row, "CustomerNum")))
		month, err := strconv.Atoi(jsonutil.FlexibleString(get(row, "MthNum")))
		if err != nil {
			errs = append(errs, models.ValidationError{
				Field:   "MthNum",
				Code:    models.CodeInvalidFormat,
				Message: fmt.Sprintf("MthNum must be a whole number for row %d.", i+1),
			})
			continue
		}
		if shapeErrs := checkShape(frequencyEntry{CustomerNum: customer, MthNum: month}, i+1); len(shapeErrs) > 0 {
			errs = append(errs, shapeErrs...)
			continue
		}
		row.Set("CustomerNum", customer)
		row.Set("MthNum", int64(month))
	}
	return apperrors.NewValidationFailed(errs)
}

func checkDistributionRows(rows []*models.Row) error {
	var errs []models.ValidationError
	for i, row := range rows {
		entry := distributionEntry{EMailAddress: strings.TrimSpace(jsonutil.FlexibleString(get(row, "EMailAddress")))}
		errs = append(errs, checkShape(entry, i+1)...)
	}
	return apperrors.NewValidationFailed(errs)
}

func checkHCMUserRows(rows []*models.Row) error {
	var errs []models.ValidationError
	for i, row := range rows {
		entry := hcmUserEntry{UserEmail: strings.TrimSpace(jsonutil.FlexibleString(get(row, "UserEmail")))}
		errs = append(errs, checkShape(entry, i+1)...)
	}
	return apperrors.NewValidationFailed(errs)
}

func get(row *models.Row, column string) any {
	v, _ := row.Get(column)
	return v
}
