package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/services"
)

// AccountHandler serves /sac_account.
type AccountHandler struct {
	resource
	accounts services.AccountService
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts services.AccountService, auditor *audit.SecurityAuditor, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		resource: newResource(services.AccountsTable.Resource, auditor, logger),
		accounts: accounts,
	}
}

// RegisterRoutes registers the account routes on the given mux.
func (h *AccountHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	route(mux, http.MethodGet, "/sac_account", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /sac_account/upsert", authMiddleware.RequireAuth(h.Upsert))
}

// List handles GET /sac_account.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	rows, err := h.accounts.List(r.Context(), filters)
	h.list(w, r, rows, err)
}

// Upsert handles POST /sac_account/upsert. Business rules are checked
// against the caller's role.
func (h *AccountHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.row(w, r)
	if !ok {
		return
	}
	result, err := h.accounts.Upsert(r.Context(), payload, callerRole(r))
	h.written(w, r, "upsert", result, err)
}
