package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// InjectionCheckResult contains the result of an injection check on a parameter value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	ParamName   string // Name of the parameter that failed the check
	ParamValue  any    // The value that was checked
}

// CheckParameterForInjection uses libinjection to detect SQL injection patterns
// in a parameter value.
//
// Only string values are checked - numbers, booleans, and other types cannot
// contain SQL injection patterns and will return nil (no injection detected).
//
// Returns nil if no injection is detected, or an InjectionCheckResult with
// details about the detected pattern.
//
// Example:
//
//	// Safe value - no injection
//	result := CheckParameterForInjection("CustomerNum", "C100")
//	// result == nil
//
//	// Injection attempt detected
//	result := CheckParameterForInjection("AttnTo", "'; DROP TABLE users--")
//	// result.IsSQLi == true
//	// result.Fingerprint == "s&1c" (or similar)
//	// result.ParamName == "AttnTo"
func CheckParameterForInjection(paramName string, value any) *InjectionCheckResult {
	// Only check string values - numbers/booleans can't contain injection
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			ParamName:   paramName,
			ParamValue:  value,
		}
	}

	return nil
}

// CheckRow screens every value of an ordered row and returns the findings
// in column order. Returns nil when every value is clean.
//
// Example:
//
//	row := models.RowOf("CustomerNum", "C100", "Stage", "'; DROP TABLE tblPolicies--")
//	results := CheckRow(row)
//	// len(results) == 1
//	// results[0].ParamName == "Stage"
func CheckRow(row *models.Row) []*InjectionCheckResult {
	if row == nil {
		return nil
	}
	var results []*InjectionCheckResult
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		if result := CheckParameterForInjection(pair.Key, pair.Value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
