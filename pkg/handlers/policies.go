package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/services"
)

// PolicyFieldUpdateRequest is the body of
// POST /sac_policies/update_field_for_all_policies.
type PolicyFieldUpdateRequest struct {
	FieldName      string `json:"fieldName" validate:"required,oneof=ServLevel Stage AcctOwner isSubmitted"`
	FieldValue     any    `json:"fieldValue"`
	UpdateVia      string `json:"updateVia" validate:"required,oneof=CustomerNum PolicyNum PolMod"`
	UpdateViaValue string `json:"updateViaValue" validate:"required"`
}

// PolicyHandler serves /sac_policies.
type PolicyHandler struct {
	resource
	policies services.PolicyService
}

// NewPolicyHandler creates a new policy handler.
func NewPolicyHandler(policies services.PolicyService, auditor *audit.SecurityAuditor, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{
		resource: newResource(services.PoliciesTable.Resource, auditor, logger),
		policies: policies,
	}
}

// RegisterRoutes registers the policy routes on the given mux.
func (h *PolicyHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	route(mux, http.MethodGet, "/sac_policies", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /sac_policies/upsert", authMiddleware.RequireAuth(h.Upsert))
	mux.HandleFunc("POST /sac_policies/update_field_for_all_policies", authMiddleware.RequireAuth(h.UpdateFieldForAll))
}

// List handles GET /sac_policies.
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	rows, err := h.policies.List(r.Context(), filters)
	h.list(w, r, rows, err)
}

// Upsert handles POST /sac_policies/upsert.
func (h *PolicyHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.row(w, r)
	if !ok {
		return
	}
	result, err := h.policies.Upsert(r.Context(), payload)
	h.written(w, r, "upsert", result, err)
}

// UpdateFieldForAll handles POST /sac_policies/update_field_for_all_policies.
func (h *PolicyHandler) UpdateFieldForAll(w http.ResponseWriter, r *http.Request) {
	var req PolicyFieldUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rejectBody(w, h.logger, err, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		badRequest(w, h.logger, err.Error())
		return
	}
	if !isScalar(req.FieldValue) {
		badRequest(w, h.logger, "fieldValue must be a string or boolean")
		return
	}

	h.auditor.ScreenRow(r.Context(), h.name, models.RowOf(
		"fieldValue", req.FieldValue,
		"updateViaValue", req.UpdateViaValue,
	), ClientIP(r))

	result, err := h.policies.UpdateFieldForAll(r.Context(), services.PolicyFieldUpdate{
		FieldName:      req.FieldName,
		FieldValue:     req.FieldValue,
		UpdateVia:      req.UpdateVia,
		UpdateViaValue: req.UpdateViaValue,
	})
	h.written(w, r, "update", result, err)
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	default:
		return false
	}
}
