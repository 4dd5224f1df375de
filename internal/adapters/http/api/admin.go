package api

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/okian/storefront/internal/domain/product"
)

type loginRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
	ExpiresIn     int  `json:"expiresIn,omitempty"`
}

type catalogResponse struct {
	Version  uint64 `json:"version"`
	Products int    `json:"products"`
}

// AdminHandler serves the admin session and catalog routes.
type AdminHandler struct {
	deps Dependencies
	gate AuthGate
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps Dependencies, gate AuthGate) *AdminHandler {
	return &AdminHandler{deps: deps, gate: gate}
}

// HandleLogin handles POST /admin/login.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if !h.gate.CheckPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := h.gate.Authenticate(r.Context(), w); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, ExpiresIn: int(h.gate.TTL().Seconds())})
}

// HandleLogout handles POST /admin/logout.
func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.gate.ClearAuth(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession handles GET /admin/session.
func (h *AdminHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: h.gate.IsAuthenticated(r)})
}

// HandleReplaceCatalog handles PUT /admin/catalog with a JSON array of
// products.
func (h *AdminHandler) HandleReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	var products []product.Product
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&products); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	version, err := h.deps.ReplaceCatalog(products)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{Version: version, Products: len(products)})
}

// RequireAdmin wraps next so that only authenticated admins reach it.
func (h *AdminHandler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	guarded := h.gate.Require(next, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
	}))
	return guarded.ServeHTTP
}
