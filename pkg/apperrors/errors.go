package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrBadRequest         = errors.New("bad request")
	ErrPayloadTooLarge    = errors.New("request body too large")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrMissingKeyField    = errors.New("missing key field")
	ErrUpsertFailed       = errors.New("upsert failed")
	ErrDeleteFailed       = errors.New("delete failed")
	ErrUpdateFailed       = errors.New("update failed")
	ErrInsertFailed       = errors.New("insert failed")
	ErrUnknownSearch      = errors.New("invalid search type")
	ErrUnknownDropdown    = errors.New("unknown dropdown")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
)

// InvalidIdentifierError reports a table or column name that cannot be
// embedded in SQL.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("Invalid column or table name: %s", e.Name)
}

func (e *InvalidIdentifierError) Unwrap() error { return ErrInvalidIdentifier }

// InvalidFilterError lists every filter field outside an allow-list.
// Fields are kept sorted.
type InvalidFilterError struct {
	Fields []string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("Invalid filter field(s): %s", strings.Join(e.Fields, ", "))
}

func (e *InvalidFilterError) Unwrap() error { return ErrInvalidFilter }

// MissingKeyFieldError reports a row that lacks one of its key columns.
// Row is the zero-based position of the row in the request, Op the write
// that needed the key ("deletion" or "upsert").
type MissingKeyFieldError struct {
	Field string
	Row   int
	Op    string
}

func (e *MissingKeyFieldError) Error() string {
	op := e.Op
	if op == "" {
		op = "deletion"
	}
	return fmt.Sprintf("%s is required for %s", e.Field, op)
}

func (e *MissingKeyFieldError) Unwrap() error { return ErrMissingKeyField }

// ValidationFailedError carries the business-rule violations of a payload.
type ValidationFailedError struct {
	Errors []models.ValidationError
}

func (e *ValidationFailedError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Message
	}
	return fmt.Sprintf("%d validation errors", len(e.Errors))
}

func (e *ValidationFailedError) Unwrap() error { return ErrValidation }

// NewValidationFailed returns nil when errs is empty.
func NewValidationFailed(errs []models.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationFailedError{Errors: errs}
}

// WriteError wraps a driver failure during a transactional write. Kind is
// one of ErrUpsertFailed, ErrInsertFailed, ErrDeleteFailed or
// ErrUpdateFailed; the whole call has been rolled back.
type WriteError struct {
	Kind  error
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Kind, e.Table, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{e.Kind, e.Err} }
