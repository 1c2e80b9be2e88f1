// Package validation holds the business-rule checks applied to SAC payloads
// before they are written. Every check is a pure function of the payload
// (and the caller's role) that returns all violations at once.
package validation

import "strings"

// Role is a caller's privilege tier. Higher values may edit more fields.
type Role int

const (
	RoleUnderwriter Role = iota
	RoleDirector
	RoleAdmin
)

// DefaultRole applies when the caller's role is missing or unrecognised.
const DefaultRole = RoleUnderwriter

// ParseRole maps a role name (any case, surrounding space ignored) to a
// Role, defaulting to Underwriter.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin
	case "director":
		return RoleDirector
	default:
		return DefaultRole
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleDirector:
		return "Director"
	default:
		return "Underwriter"
	}
}

// fieldMinRole lists the account fields that need more than the lowest
// tier to edit. Fields not listed are editable by every role.
var fieldMinRole = map[string]Role{
	"RelatedEnt":              RoleDirector,
	"SAC_Contact1":            RoleDirector,
	"LossCtlRep1":             RoleDirector,
	"SAC_Contact2":            RoleDirector,
	"LossCtlRep2":             RoleDirector,
	"AcctOwner":               RoleDirector,
	"RiskSolMgr":              RoleDirector,
	"OBMethod":                RoleDirector,
	"HCMAccess":               RoleDirector,
	"BusinessType":            RoleDirector,
	"LossRunDistFreq":         RoleDirector,
	"DeductDistFreq":          RoleDirector,
	"ClaimRevDistFreq":        RoleDirector,
	"CRThresh":                RoleDirector,
	"LossRunReportRecipient":  RoleDirector,
	"DecuctCheckAll":          RoleDirector,
	"DecuctUnCheckAll":        RoleDirector,
	"DeductReportRecipient":   RoleDirector,
	"ClaimRevCheckAll":        RoleDirector,
	"ClaimRevUnCheckAll":      RoleDirector,
	"ClaimRevReportRecipient": RoleDirector,
}

// MinRole returns the lowest role allowed to edit field.
func MinRole(field string) Role {
	if role, ok := fieldMinRole[field]; ok {
		return role
	}
	return RoleUnderwriter
}

// CanEdit reports whether r may edit field.
func (r Role) CanEdit(field string) bool {
	return r >= MinRole(field)
}
