package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/services"
)

// HCMUserHandler serves /hcm_users.
type HCMUserHandler struct {
	resource
	users services.HCMUserService
}

// NewHCMUserHandler creates a new HCM user handler.
func NewHCMUserHandler(users services.HCMUserService, auditor *audit.SecurityAuditor, logger *zap.Logger) *HCMUserHandler {
	return &HCMUserHandler{
		resource: newResource(services.HCMUsersTable.Resource, auditor, logger),
		users:    users,
	}
}

// RegisterRoutes registers the HCM user routes on the given mux.
func (h *HCMUserHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	route(mux, http.MethodGet, "/hcm_users", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /hcm_users/upsert", authMiddleware.RequireAuth(h.Upsert))
}

// List handles GET /hcm_users.
func (h *HCMUserHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	rows, err := h.users.List(r.Context(), filters)
	h.list(w, r, rows, err)
}

// Upsert handles POST /hcm_users/upsert. Rows with a PK_Number are
// updated, the rest inserted.
func (h *HCMUserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r, false)
	if !ok {
		return
	}
	if err := checkHCMUserRows(rows); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.users.Upsert(r.Context(), rows)
	h.written(w, r, "upsert", result, err)
}
