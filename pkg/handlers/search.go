package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/services"
)

// SearchHandler serves the prebuilt account searches and the dropdown
// lists.
type SearchHandler struct {
	resource
	search    services.SearchService
	dropdowns services.DropdownService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search services.SearchService, dropdowns services.DropdownService, auditor *audit.SecurityAuditor, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		resource:  newResource("search", auditor, logger),
		search:    search,
		dropdowns: dropdowns,
	}
}

// RegisterRoutes registers the search and dropdown routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	route(mux, http.MethodGet, "/search_sac_account", authMiddleware.RequireAuth(h.Search))
	mux.HandleFunc("GET /dropdowns/{name}", authMiddleware.RequireAuth(h.Dropdown))
}

// Search handles GET /search_sac_account?search_by=<kind>.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	kind := strings.TrimSpace(r.URL.Query().Get("search_by"))
	if kind == "" {
		badRequest(w, h.logger, "search_by is required")
		return
	}
	rows, err := h.search.Search(r.Context(), kind)
	h.list(w, r, rows, err)
}

// Dropdown handles GET /dropdowns/{name}.
func (h *SearchHandler) Dropdown(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dropdowns.Values(r.Context(), r.PathValue("name"))
	h.list(w, r, rows, err)
}
