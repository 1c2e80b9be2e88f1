package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/services"
)

// AffiliateHandler serves /sac_affiliates. These routes are open.
type AffiliateHandler struct {
	resource
	affiliates services.AffiliateService
}

// NewAffiliateHandler creates a new affiliate handler.
func NewAffiliateHandler(affiliates services.AffiliateService, auditor *audit.SecurityAuditor, logger *zap.Logger) *AffiliateHandler {
	return &AffiliateHandler{
		resource:   newResource(services.AffiliatesTable.Resource, auditor, logger),
		affiliates: affiliates,
	}
}

// RegisterRoutes registers the affiliate routes on the given mux.
func (h *AffiliateHandler) RegisterRoutes(mux *http.ServeMux) {
	route(mux, http.MethodGet, "/sac_affiliates", h.List)
	mux.HandleFunc("POST /sac_affiliates/upsert", h.Upsert)
}

// List handles GET /sac_affiliates.
func (h *AffiliateHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	rows, err := h.affiliates.List(r.Context(), filters)
	h.list(w, r, rows, err)
}

// Upsert handles POST /sac_affiliates/upsert.
func (h *AffiliateHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r, false)
	if !ok {
		return
	}
	result, err := h.affiliates.Upsert(r.Context(), rows)
	h.written(w, r, "upsert", result, err)
}
