package validation

import "github.com/ekaya-inc/sac-engine/pkg/models"

var policyRequired = []fieldRule{
	{"AccountName", "Customer Account Name is mandatory."},
	{"LocCoded", "Location Coded is mandatory."},
	{"PolicyNum", "Policy Number is mandatory."},
	{"PolMod", "Policy Mod is mandatory."},
}

// ValidatePolicy reports the missing mandatory fields of a policy payload.
// Policy fields are not role gated.
func ValidatePolicy(payload *models.Row) []models.ValidationError {
	return appendMissing(nil, payload, RoleAdmin, policyRequired)
}
