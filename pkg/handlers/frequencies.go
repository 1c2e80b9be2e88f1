package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/services"
)

// FrequencyHandler serves one report frequency table.
type FrequencyHandler struct {
	resource
	path        string
	frequencies services.FrequencyService
}

// NewFrequencyHandler creates a handler for table.
func NewFrequencyHandler(table services.Table, frequencies services.FrequencyService, auditor *audit.SecurityAuditor, logger *zap.Logger) *FrequencyHandler {
	return &FrequencyHandler{
		resource:    newResource(table.Resource, auditor, logger),
		path:        "/" + table.Resource,
		frequencies: frequencies,
	}
}

// RegisterRoutes registers the frequency routes on the given mux.
func (h *FrequencyHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	route(mux, http.MethodGet, h.path, authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST "+h.path+"/upsert", authMiddleware.RequireAuth(h.Upsert))
}

func (h *FrequencyHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	rows, err := h.frequencies.List(r.Context(), filters)
	h.list(w, r, rows, err)
}

// Upsert requires CustomerNum and a MthNum between 1 and 12 on every row.
func (h *FrequencyHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r, false)
	if !ok {
		return
	}
	if err := checkFrequencyRows(rows); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.frequencies.Upsert(r.Context(), rows)
	h.written(w, r, "upsert", result, err)
}
