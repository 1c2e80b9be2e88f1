package validation

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

type fieldRule struct {
	field   string
	message string
}

var accountRequired = []fieldRule{
	{"CustomerNum", "Customer Number is mandatory."},
	{"CustomerName", "Account Name is mandatory."},
	{"OnBoardDate", "On Board Date is mandatory."},
	{"BranchName", "Branch Name is mandatory."},
}

var inactiveRequired = []fieldRule{
	{"DateNotif", "Notification Date is mandatory when account is Inactive."},
	{"TermDate", "Termination Date is mandatory when account is Inactive."},
	{"TermCode", "Termination Reason is mandatory when account is Inactive."},
}

// premiumBand is an inclusive range; a nil bound is open.
type premiumBand struct {
	min *decimal.Decimal
	max *decimal.Decimal
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

var serviceLevelBands = map[string]premiumBand{
	"Comprehensive": {min: bound(750000)},
	"Enhanced":      {min: bound(500000), max: bound(750000)},
	"Essential":     {min: bound(250000), max: bound(500000)},
	"Primary":       {min: bound(150000), max: bound(250000)},
	"Exception":     {min: bound(0), max: bound(150000)},
}

// Levels that require a total premium of exactly zero. The misspelling is
// the stored dropdown value.
var zeroPremiumLevels = map[string]bool{
	"Decuctible Billing - Special Accounts": true,
	"Loss Run":                              true,
	"Deductible Billing - Paragon":          true,
	"Inactive":                              true,
}

const serviceLevelConflictMessage = "Total Active Policy Premium is in conflict with Service Level."

// ValidateAccount checks a SAC account payload for the given role and
// returns every violation: required fields, the fields an Inactive account
// additionally needs, and the service level vs premium banding unless
// ServiceLevelOverride is set.
func ValidateAccount(payload *models.Row, role Role) []models.ValidationError {
	var errs []models.ValidationError

	errs = appendMissing(errs, payload, role, accountRequired)

	if status, _ := get(payload, "AcctStatus").(string); status == "Inactive" {
		errs = appendMissing(errs, payload, role, inactiveRequired)
	}

	if role.CanEdit("ServLevel") && role.CanEdit("TotalPrem") &&
		!isOverride(get(payload, "ServiceLevelOverride")) &&
		serviceLevelConflict(payload) {
		errs = append(errs, models.ValidationError{
			Field:   "ServLevel",
			Code:    models.CodeServiceLevelConflict,
			Message: serviceLevelConflictMessage,
		})
	}

	return errs
}

func appendMissing(errs []models.ValidationError, payload *models.Row, role Role, rules []fieldRule) []models.ValidationError {
	for _, rule := range rules {
		if role.CanEdit(rule.field) && !models.HasValue(get(payload, rule.field)) {
			errs = append(errs, models.ValidationError{
				Field:   rule.field,
				Code:    models.CodeRequired,
				Message: rule.message,
			})
		}
	}
	return errs
}

func serviceLevelConflict(payload *models.Row) bool {
	level, _ := get(payload, "ServLevel").(string)
	if level == "" {
		return false
	}

	total, ok := coerceDecimal(get(payload, "TotalPrem"))

	if zeroPremiumLevels[level] {
		return !ok || !total.IsZero()
	}
	if !ok {
		return false
	}

	band, known := serviceLevelBands[level]
	if !known {
		return false
	}
	if band.min != nil && total.LessThan(*band.min) {
		return true
	}
	if band.max != nil && total.GreaterThan(*band.max) {
		return true
	}
	return false
}

// coerceDecimal accepts numbers and numeric strings (thousands separators
// allowed). ok is false for anything else.
func coerceDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return t, true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case float32:
		return coerceFloat(float64(t))
	case float64:
		return coerceFloat(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if cleaned == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(cleaned)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func coerceFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// isOverride accepts the truthy spellings clients send for the override
// checkbox.
func isOverride(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "True" || t == "1"
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	case json.Number:
		return t.String() == "1"
	default:
		return false
	}
}

func get(payload *models.Row, field string) any {
	if payload == nil {
		return nil
	}
	v, _ := payload.Get(field)
	return v
}
