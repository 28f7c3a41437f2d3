// Package handler exposes provider administration endpoints. All routes are
// guarded by the admin token; tenant scope comes from a header because admin
// callers are platform operators, not tenant users.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veriflow/internal/platform/middleware"
	"veriflow/internal/provider/models"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/httputil"
)

// Service defines the provider administration operations.
type Service interface {
	Create(ctx context.Context, provider *models.Provider) (*models.Provider, error)
	Get(ctx context.Context, id, tenantID string) (*models.Provider, error)
	SetEnabled(ctx context.Context, id, tenantID string, enabled bool) (*models.Provider, error)
}

// Handler handles provider administration endpoints.
type Handler struct {
	logger         *slog.Logger
	providers      Service
	adminTokenHash string
}

// New creates a provider admin Handler.
func New(providers Service, logger *slog.Logger, adminTokenHash string) *Handler {
	return &Handler{
		logger:         logger,
		providers:      providers,
		adminTokenHash: adminTokenHash,
	}
}

// Register mounts the admin routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.RequireAdminToken(h.adminTokenHash))
		r.Post("/admin/providers", h.handleCreate)
		r.Get("/admin/providers/{id}", h.handleGet)
		r.Post("/admin/providers/{id}/enable", h.handleSetEnabled(true))
		r.Post("/admin/providers/{id}/disable", h.handleSetEnabled(false))
	})
}

// createRequest is the admin payload for registering a provider.
type createRequest struct {
	ID            string            `json:"id,omitempty"`
	TenantID      string            `json:"tenant_id"`
	Name          string            `json:"name"`
	Enabled       bool              `json:"enabled"`
	Config        map[string]string `json:"config"`
	ClaimMappings map[string]string `json:"claim_mappings,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	provider, err := h.providers.Create(r.Context(), &models.Provider{
		ID:            req.ID,
		TenantID:      req.TenantID,
		Name:          req.Name,
		Enabled:       req.Enabled,
		Config:        req.Config,
		ClaimMappings: req.ClaimMappings,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, provider)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providers.Get(r.Context(), chi.URLParam(r, "id"), r.Header.Get("X-Tenant-ID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, provider)
}

func (h *Handler) handleSetEnabled(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := h.providers.SetEnabled(r.Context(), chi.URLParam(r, "id"), r.Header.Get("X-Tenant-ID"), enabled)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, provider)
	}
}
