package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// ValidationErrorResponse is the 422 body for business-rule violations.
type ValidationErrorResponse struct {
	Error   string                   `json:"error"`
	Message string                   `json:"message"`
	Errors  []models.ValidationError `json:"errors"`
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// errorMapping ties a sentinel to its HTTP status and error code.
type errorMapping struct {
	sentinel error
	status   int
	code     string
}

var errorMappings = []errorMapping{
	{apperrors.ErrInvalidIdentifier, http.StatusBadRequest, "invalid_identifier"},
	{apperrors.ErrInvalidFilter, http.StatusBadRequest, "invalid_filter"},
	{apperrors.ErrMissingKeyField, http.StatusBadRequest, "missing_key_field"},
	{apperrors.ErrUnknownSearch, http.StatusBadRequest, "invalid_search_type"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperrors.ErrUnknownDropdown, http.StatusNotFound, "unknown_dropdown"},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrUpsertFailed, http.StatusInternalServerError, "upsert_failed"},
	{apperrors.ErrInsertFailed, http.StatusInternalServerError, "insert_failed"},
	{apperrors.ErrDeleteFailed, http.StatusInternalServerError, "delete_failed"},
	{apperrors.ErrUpdateFailed, http.StatusInternalServerError, "update_failed"},
}

// statusFor returns the HTTP status and error code for err.
func statusFor(err error) (int, string) {
	if errors.Is(err, apperrors.ErrValidation) {
		return http.StatusUnprocessableEntity, "validation_failed"
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// errorMessage strips a leading "<sentinel>: " so clients see only the
// detail text.
func errorMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, apperrors.ErrUnknownSearch) {
		return "Invalid search type"
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			if rest, ok := strings.CutPrefix(msg, m.sentinel.Error()+": "); ok {
				return rest
			}
			break
		}
	}
	return msg
}

// WriteServiceError maps a service error to its status and writes it.
// Server-side failures are logged; their message is still returned.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, code := statusFor(err)

	var vErr *apperrors.ValidationFailedError
	if errors.As(err, &vErr) {
		if err := WriteJSON(w, status, ValidationErrorResponse{
			Error:   code,
			Message: vErr.Error(),
			Errors:  vErr.Errors,
		}); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
	}
	if err := ErrorResponse(w, status, code, errorMessage(err)); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
