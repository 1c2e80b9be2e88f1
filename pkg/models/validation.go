package models

// Validation error codes.
const (
	CodeRequired             = "REQUIRED"
	CodeServiceLevelConflict = "SERVICE_LEVEL_CONFLICT"
	CodeInvalidLength        = "INVALID_LENGTH"
	CodeInvalidFormat        = "INVALID_FORMAT"
)

// ValidationError is a single business-rule violation on a payload field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
