package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/validation"
)

// resource holds what every SAC table handler shares: the name used in
// audit events, the auditor and the logger.
type resource struct {
	name    string
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

func newResource(name string, auditor *audit.SecurityAuditor, logger *zap.Logger) resource {
	return resource{name: name, auditor: auditor, logger: logger.Named(name)}
}

// filters parses and screens the query string. On failure the response
// has been written.
func (h resource) filters(w http.ResponseWriter, r *http.Request) (*models.Row, bool) {
	row, err := QueryRow(r)
	if err != nil {
		badRequest(w, h.logger, err.Error())
		return nil, false
	}
	h.auditor.ScreenRow(r.Context(), h.name, row, ClientIP(r))
	return row, true
}

// row decodes and screens a single-object body.
func (h resource) row(w http.ResponseWriter, r *http.Request) (*models.Row, bool) {
	row, err := DecodeRowBody(w, r)
	if err != nil {
		rejectBody(w, h.logger, err, "Invalid request body: "+err.Error())
		return nil, false
	}
	h.auditor.ScreenRow(r.Context(), h.name, row, ClientIP(r))
	return row, true
}

// rows decodes and screens an array body.
func (h resource) rows(w http.ResponseWriter, r *http.Request, keepNulls bool) ([]*models.Row, bool) {
	rows, err := DecodeRowsBody(w, r, keepNulls)
	if err != nil {
		rejectBody(w, h.logger, err, "Invalid request body: "+err.Error())
		return nil, false
	}
	h.auditor.ScreenRows(r.Context(), h.name, rows, ClientIP(r))
	return rows, true
}

// list writes rows or the mapped error.
func (h resource) list(w http.ResponseWriter, r *http.Request, rows []*models.Row, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []*models.Row{}
	}
	respond(w, h.logger, rows)
}

// written records a successful write in the audit log and returns result.
func (h resource) written(w http.ResponseWriter, r *http.Request, op string, result *models.WriteResult, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.auditor.LogWrite(r.Context(), h.name, op, result.Count, ClientIP(r))
	respond(w, h.logger, result)
}

func (h resource) fail(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *apperrors.ValidationFailedError
	if errors.As(err, &vErr) {
		h.auditor.LogValidationFailure(r.Context(), h.name, vErr.Errors, ClientIP(r))
	}
	WriteServiceError(w, h.logger, err)
}

// callerRole reads the caller's role from the session claims.
func callerRole(r *http.Request) validation.Role {
	return validation.ParseRole(auth.GetRoleFromContext(r.Context()))
}

// route registers pattern plus its trailing-slash form.
func route(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	mux.HandleFunc(method+" "+path, h)
	mux.HandleFunc(method+" "+path+"/{$}", h)
}
