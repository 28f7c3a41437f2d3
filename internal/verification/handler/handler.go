// Package handler exposes the verification orchestration endpoint.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veriflow/internal/platform/middleware"
	"veriflow/internal/verification/models"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/httputil"
)

// Service is the verification orchestration entry point.
type Service interface {
	Verify(ctx context.Context, userID, tenantID string, req models.Request) ([]models.ClaimResult, error)
}

// Handler handles the verification endpoint.
type Handler struct {
	logger       *slog.Logger
	verification Service
	jwtValidator middleware.JWTValidator
}

// New creates a verification Handler.
func New(verification Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		verification: verification,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the verification routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.DeviceInfo)
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/verify", h.handleVerify)
	})
}

// verifyResponse wraps the claim list for the caller.
type verifyResponse struct {
	Claims []models.ClaimResult `json:"claims"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	tenantID := middleware.GetTenantID(ctx)
	if userID == "" || tenantID == "" {
		h.logger.ErrorContext(ctx, "identity missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req models.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid verification request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	claims, err := h.verification.Verify(ctx, userID, tenantID, req)
	if err != nil {
		if dErrors.IsClient(err) {
			h.logger.WarnContext(ctx, "verification rejected",
				"request_id", requestID,
				"user_id", userID,
				"error", err.Error(),
			)
		}
		// Server-class failures were already logged by the service.
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, verifyResponse{Claims: claims})
}
