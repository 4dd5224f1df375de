// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/okian/storefront/internal/adapters/mq/message"
	"github.com/okian/storefront/internal/domain/product"
)

// maxBodyBytes caps request bodies on write routes.
const maxBodyBytes = 16 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Products filters the catalog and optionally sorts the matches.
	Products(ctx context.Context, criteria product.Criteria, key product.SortKey) ([]product.Product, error)

	// Statistics aggregates the catalog.
	Statistics(ctx context.Context) (product.Report, error)

	// Compute forwards a raw wire message to a compute engine.
	Compute(ctx context.Context, env message.Envelope) (message.Response, error)

	// ReplaceCatalog swaps the catalog and returns its new version.
	ReplaceCatalog(products []product.Product) (uint64, error)
}

// AuthGate guards the admin routes.
type AuthGate interface {
	CheckPassword(candidate string) bool
	IsAuthenticated(r *http.Request) bool
	Authenticate(ctx context.Context, w http.ResponseWriter) error
	ClearAuth(w http.ResponseWriter, r *http.Request)
	Require(next, denied http.Handler) http.Handler
	TTL() time.Duration
}

// Server wires HTTP routes for the storefront API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	productsHandler *ProductsHandler
	computeHandler  *ComputeHandler
	adminHandler    *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, gate AuthGate, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		productsHandler: NewProductsHandler(deps),
		computeHandler:  NewComputeHandler(deps),
		adminHandler:    NewAdminHandler(deps, gate),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.Use(RequestIDMiddleware)

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	// Specific paths first
	r.HandleFunc("/products/statistics", MetricsMiddleware(s.productsHandler.HandleStatistics, "products_statistics")).Methods(http.MethodGet)
	r.HandleFunc("/products", MetricsMiddleware(s.productsHandler.HandleList, "products")).Methods(http.MethodGet)
	r.HandleFunc("/compute", MetricsMiddleware(s.computeHandler.HandleCompute, "compute")).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/login", MetricsMiddleware(s.adminHandler.HandleLogin, "admin_login")).Methods(http.MethodPost)
	admin.HandleFunc("/logout", MetricsMiddleware(s.adminHandler.HandleLogout, "admin_logout")).Methods(http.MethodPost)
	admin.HandleFunc("/session", MetricsMiddleware(s.adminHandler.HandleSession, "admin_session")).Methods(http.MethodGet)
	admin.Handle("/catalog", MetricsMiddleware(s.adminHandler.RequireAdmin(s.adminHandler.HandleReplaceCatalog), "admin_catalog")).Methods(http.MethodPut)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
