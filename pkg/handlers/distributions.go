package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/services"
)

// DistributionHandler serves one distribution list table under
// /<resource>, /<resource>/upsert and /<resource>/delete.
type DistributionHandler struct {
	resource
	path          string
	distributions services.DistributionService
}

// NewDistributionHandler creates a handler for table.
func NewDistributionHandler(table services.Table, distributions services.DistributionService, auditor *audit.SecurityAuditor, logger *zap.Logger) *DistributionHandler {
	return &DistributionHandler{
		resource:      newResource(table.Resource, auditor, logger),
		path:          "/" + table.Resource,
		distributions: distributions,
	}
}

// RegisterRoutes registers the distribution routes on the given mux.
func (h *DistributionHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	route(mux, http.MethodGet, h.path, authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST "+h.path+"/upsert", authMiddleware.RequireAuth(h.Upsert))
	mux.HandleFunc("POST "+h.path+"/delete", authMiddleware.RequireAuth(h.Delete))
}

// List returns recipients matching the query filters.
func (h *DistributionHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	rows, err := h.distributions.List(r.Context(), filters)
	h.list(w, r, rows, err)
}

// Upsert keeps null fields so blank recipient rows can be recognised and
// dropped by the service.
func (h *DistributionHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r, true)
	if !ok {
		return
	}
	if err := checkDistributionRows(rows); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.distributions.Upsert(r.Context(), rows)
	h.written(w, r, "upsert", result, err)
}

func (h *DistributionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r, false)
	if !ok {
		return
	}
	result, err := h.distributions.Delete(r.Context(), rows)
	h.written(w, r, "delete", result, err)
}
