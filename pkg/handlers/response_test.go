package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errorCode  string
		message    string
	}{
		{"bad request", http.StatusBadRequest, "bad_request", "invalid input"},
		{"not found", http.StatusNotFound, "not_found", "resource not found"},
		{"internal error", http.StatusInternalServerError, "internal_error", "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			if err := ErrorResponse(w, tt.statusCode, tt.errorCode, tt.message); err != nil {
				t.Fatalf("ErrorResponse returned error: %v", err)
			}

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.statusCode {
				t.Errorf("status code = %d, want %d", resp.StatusCode, tt.statusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body["error"] != tt.errorCode {
				t.Errorf("body[error] = %q, want %q", body["error"], tt.errorCode)
			}
			if body["message"] != tt.message {
				t.Errorf("body[message] = %q, want %q", body["message"], tt.message)
			}
		})
	}
}

func TestWriteJSON_Status200(t *testing.T) {
	w := httptest.NewRecorder()

	if err := WriteJSON(w, http.StatusOK, map[string]string{"key": "value"}); err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "{\"key\":\"value\"}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "invalid filter",
			err:     &apperrors.InvalidFilterError{Fields: []string{"Password"}},
			status:  http.StatusBadRequest,
			code:    "invalid_filter",
			message: (&apperrors.InvalidFilterError{Fields: []string{"Password"}}).Error(),
		},
		{
			name:    "bad request detail",
			err:     fmt.Errorf("%w: Invalid fieldName", apperrors.ErrBadRequest),
			status:  http.StatusBadRequest,
			code:    "bad_request",
			message: "Invalid fieldName",
		},
		{
			name:    "unknown search",
			err:     apperrors.ErrUnknownSearch,
			status:  http.StatusBadRequest,
			code:    "invalid_search_type",
			message: "Invalid search type",
		},
		{
			name:    "unknown dropdown",
			err:     fmt.Errorf("%w: Unknown dropdown 'X'", apperrors.ErrUnknownDropdown),
			status:  http.StatusNotFound,
			code:    "unknown_dropdown",
			message: "Unknown dropdown 'X'",
		},
		{
			name:    "credentials",
			err:     apperrors.ErrInvalidCredentials,
			status:  http.StatusUnauthorized,
			code:    "invalid_credentials",
			message: apperrors.ErrInvalidCredentials.Error(),
		},
		{
			name:    "unmapped",
			err:     errors.New("connection reset"),
			status:  http.StatusInternalServerError,
			code:    "internal_error",
			message: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteServiceError(w, zap.NewNop(), tt.err)

			if w.Code != tt.status {
				t.Errorf("status code = %d, want %d", w.Code, tt.status)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body["error"] != tt.code {
				t.Errorf("body[error] = %q, want %q", body["error"], tt.code)
			}
			if body["message"] != tt.message {
				t.Errorf("body[message] = %q, want %q", body["message"], tt.message)
			}
		})
	}
}

func TestWriteServiceError_Validation(t *testing.T) {
	w := httptest.NewRecorder()
	WriteServiceError(w, zap.NewNop(), apperrors.NewValidationFailed([]models.ValidationError{
		{Field: "CustomerName", Code: models.CodeRequired, Message: "Customer Name is mandatory."},
	}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status code = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	var body ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Error != "validation_failed" || len(body.Errors) != 1 || body.Errors[0].Field != "CustomerName" {
		t.Errorf("unexpected body: %+v", body)
	}
}
