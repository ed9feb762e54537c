// Package api exposes the ledger core over HTTP. Handlers are thin: they
// decode, call an engine, and map errors to status codes. All routes are
// tenant-scoped; auth is the deployment's concern, not this layer's.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenbooks-dev/greenbooks/internal/accounts"
	"github.com/greenbooks-dev/greenbooks/internal/assets"
	"github.com/greenbooks-dev/greenbooks/internal/closing"
	"github.com/greenbooks-dev/greenbooks/internal/ledger"
	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/posting"
)

// Server wires the engines into an HTTP handler.
type Server struct {
	registry *accounts.Registry
	store    *ledger.Store
	posting  *posting.Engine
	closing  *closing.Engine
	assets   *assets.Engine
}

// NewServer creates a Server.
func NewServer(registry *accounts.Registry, store *ledger.Store, postingEngine *posting.Engine, closingEngine *closing.Engine, assetEngine *assets.Engine) *Server {
	return &Server{
		registry: registry,
		store:    store,
		posting:  postingEngine,
		closing:  closingEngine,
		assets:   assetEngine,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/tenants/{tenant}", func(r chi.Router) {
		r.Post("/expenses", s.handlePostExpense)
		r.Post("/invoices", s.handlePostInvoice)
		r.Post("/revenues", s.handlePostRevenue)
		r.Post("/close", s.handleClosePeriod)
		r.Post("/transactions/{reference}/void", s.handleVoid)

		r.Get("/accounts", s.handleListAccounts)
		r.Post("/accounts", s.handleCreateAccount)
		r.Patch("/accounts/{code}", s.handleUpdateAccount)
		r.Delete("/accounts/{code}", s.handleDeleteAccount)
		r.Get("/accounts/{code}/balance", s.handleBalance)
		r.Get("/accounts/{code}/entries", s.handleEntries)

		r.Post("/assets", s.handleRegisterAsset)
		r.Get("/assets", s.handleListAssets)
		r.Post("/assets/{key}/dispose", s.handleDisposeAsset)
		r.Post("/depreciation/run", s.handleRunDepreciation)

		r.Get("/audit", s.handleAudit)
	})

	return r
}

func tenantID(r *http.Request) string {
	return chi.URLParam(r, "tenant")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps core errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case model.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateDocumentNumber),
		errors.Is(err, model.ErrAccountExists),
		errors.Is(err, model.ErrAssetExists),
		errors.Is(err, model.ErrAccountInUse),
		errors.Is(err, model.ErrAccountProtected):
		status = http.StatusConflict
	case errors.Is(err, model.ErrAccountNotFound),
		errors.Is(err, model.ErrAssetNotFound),
		errors.Is(err, model.ErrTransactionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrUnbalancedEntries),
		errors.Is(err, model.ErrClosingNotBalanced):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return model.Validationf("body", "malformed JSON: %v", err)
	}
	return nil
}
