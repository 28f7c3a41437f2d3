// Package service manages verification provider configuration for tenants.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"veriflow/internal/audit"
	"veriflow/internal/provider/models"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/sentinel"
)

type Store interface {
	Create(ctx context.Context, provider *models.Provider) error
	Get(ctx context.Context, id, tenantID string) (*models.Provider, error)
	SetEnabled(ctx context.Context, id, tenantID string, enabled bool) error
}

type AuditPublisher interface {
	Emit(event audit.Event)
}

// Service orchestrates provider administration.
type Service struct {
	store   Store
	logger  *slog.Logger
	auditor AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a provider. The configuration bag must be complete up
// front so a provider can never be enabled with missing keys.
func (s *Service) Create(ctx context.Context, provider *models.Provider) (*models.Provider, error) {
	provider.Name = strings.TrimSpace(provider.Name)
	if provider.Name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "provider name is required")
	}
	if provider.TenantID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if _, err := provider.RemoteConfig(); err != nil {
		return nil, err
	}
	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}

	if err := s.store.Create(ctx, provider); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "provider %s already exists", provider.ID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create provider")
	}

	s.logger.InfoContext(ctx, "provider created",
		"provider_id", provider.ID,
		"tenant_id", provider.TenantID,
		"name", provider.Name,
	)
	s.emit(ctx, audit.ActionProviderCreated, provider)
	return provider, nil
}

// Get returns one provider.
func (s *Service) Get(ctx context.Context, id, tenantID string) (*models.Provider, error) {
	provider, err := s.store.Get(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "provider %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load provider")
	}
	return provider, nil
}

// SetEnabled flips the enabled flag.
func (s *Service) SetEnabled(ctx context.Context, id, tenantID string, enabled bool) (*models.Provider, error) {
	if err := s.store.SetEnabled(ctx, id, tenantID, enabled); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "provider %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update provider")
	}
	provider, err := s.Get(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	action := audit.ActionProviderDisabled
	if enabled {
		action = audit.ActionProviderEnabled
	}
	s.logger.InfoContext(ctx, "provider enabled flag changed",
		"provider_id", id,
		"tenant_id", tenantID,
		"enabled", enabled,
	)
	s.emit(ctx, action, provider)
	return provider, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, provider *models.Provider) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(audit.Event{
		TenantID:   provider.TenantID,
		ProviderID: provider.ID,
		Action:     action,
	})
}
