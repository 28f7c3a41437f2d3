// Package service implements the verification orchestration state machine:
// it interprets an inbound flow-status signal, enforces preconditions, drives
// the remote provider through its call sequence, and reconciles returned
// identifiers and status into durable claim metadata.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"veriflow/internal/audit"
	"veriflow/internal/platform/middleware"
	pmodels "veriflow/internal/provider/models"
	"veriflow/internal/verification/metrics"
	"veriflow/internal/verification/models"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks_test.go -package=service

// ProviderRegistry resolves a configured verification provider for a tenant.
type ProviderRegistry interface {
	Get(ctx context.Context, id, tenantID string) (*pmodels.Provider, error)
}

// AttributeStore reads user attribute values. A lookup distinguishes a
// missing user (sentinel.ErrUserNotFound) from a missing attribute
// (sentinel.ErrNotFound).
type AttributeStore interface {
	AttributeValue(ctx context.Context, userID, claimURI, tenantID string) (string, error)
}

// ClaimStore persists verification claims.
type ClaimStore interface {
	ClaimsByUser(ctx context.Context, userID, providerID, tenantID string) ([]*models.Claim, error)
	ClaimsByMetadata(ctx context.Context, field, value, providerID, tenantID string) ([]*models.Claim, error)
	Claim(ctx context.Context, userID, claimURI, providerID, tenantID string) (*models.Claim, error)
	SaveAll(ctx context.Context, userID string, claims []*models.Claim, tenantID string) error
	Update(ctx context.Context, userID string, claim *models.Claim, tenantID string) error
}

// ProviderClient drives the remote verification provider's API.
type ProviderClient interface {
	CreateApplicant(ctx context.Context, cfg pmodels.RemoteConfig, fields map[string]string) (string, error)
	UpdateApplicant(ctx context.Context, cfg pmodels.RemoteConfig, fields map[string]string, applicantID string) error
	CreateWorkflowRun(ctx context.Context, cfg pmodels.RemoteConfig, workflowID, applicantID string) (string, error)
	CreateSDKToken(ctx context.Context, cfg pmodels.RemoteConfig, applicantID string) (string, error)
	WorkflowRunStatus(ctx context.Context, cfg pmodels.RemoteConfig, runID string) (string, error)
}

// Locker guards the initiation read-then-write sequence per (user, provider).
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// AuditPublisher records verification activity. Emission is fire-and-forget.
type AuditPublisher interface {
	Emit(event audit.Event)
}

// Service orchestrates verification flows against the remote provider.
type Service struct {
	providers  ProviderRegistry
	attributes AttributeStore
	claims     ClaimStore
	client     ProviderClient
	locker     Locker
	lockTTL    time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

// WithLockTTL overrides how long an initiation lock may be held before it
// frees itself.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) { s.lockTTL = ttl }
}

// New constructs a Service.
func New(providers ProviderRegistry, attributes AttributeStore, claims ClaimStore, client ProviderClient, locker Locker, opts ...Option) *Service {
	s := &Service{
		providers:  providers,
		attributes: attributes,
		claims:     claims,
		client:     client,
		locker:     locker,
		lockTTL:    2 * time.Minute,
		logger:     slog.Default(),
		tracer:     otel.Tracer("veriflow/internal/verification/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify routes one verification request to its flow operation. The flow
// status and provider reference are validated before any collaborator call.
func (s *Service) Verify(ctx context.Context, userID, tenantID string, req models.Request) ([]models.ClaimResult, error) {
	flow, err := req.Flow()
	if err != nil {
		return nil, err
	}
	providerID, err := req.ProviderRef()
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "verification.verify",
		trace.WithAttributes(
			attribute.String("verification.flow", string(flow)),
			attribute.String("verification.provider_id", providerID),
		))
	defer span.End()

	start := time.Now()
	results, err := s.dispatch(ctx, flow, userID, tenantID, providerID, req)
	s.observe(ctx, flow, userID, tenantID, providerID, req, err, time.Since(start))
	return results, err
}

func (s *Service) dispatch(ctx context.Context, flow models.FlowStatus, userID, tenantID, providerID string, req models.Request) ([]models.ClaimResult, error) {
	provider, cfg, err := s.resolveProvider(ctx, providerID, tenantID)
	if err != nil {
		return nil, err
	}

	switch flow {
	case models.FlowInitiate:
		return s.initiate(ctx, userID, tenantID, provider, cfg, req.ClaimURIs)
	case models.FlowComplete:
		runID, err := req.RunID()
		if err != nil {
			return nil, err
		}
		return s.complete(ctx, userID, tenantID, provider, cfg, runID)
	case models.FlowResume:
		runID, err := req.RunID()
		if err != nil {
			return nil, err
		}
		return s.resume(ctx, userID, tenantID, provider, cfg, runID)
	default:
		// Flow() already rejected anything else.
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid flow status %q", flow)
	}
}

// resolveProvider guarantees downstream flows only ever see an enabled
// provider with a complete configuration bag.
func (s *Service) resolveProvider(ctx context.Context, providerID, tenantID string) (*pmodels.Provider, pmodels.RemoteConfig, error) {
	provider, err := s.providers.Get(ctx, providerID, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, pmodels.RemoteConfig{}, dErrors.Newf(dErrors.CodeNotFound, "verification provider %q not found", providerID)
		}
		return nil, pmodels.RemoteConfig{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve verification provider")
	}
	if err := provider.Validate(); err != nil {
		return nil, pmodels.RemoteConfig{}, err
	}
	cfg, err := provider.RemoteConfig()
	if err != nil {
		return nil, pmodels.RemoteConfig{}, err
	}
	return provider, cfg, nil
}

func (s *Service) observe(ctx context.Context, flow models.FlowStatus, userID, tenantID, providerID string, req models.Request, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "server_error"
		if dErrors.IsClient(err) {
			result = "client_error"
		}
	}
	s.metrics.IncrementFlowOutcome(string(flow), result)
	s.metrics.ObserveVerifyLatency(string(flow), elapsed)

	if err != nil {
		s.logger.ErrorContext(ctx, "verification flow failed",
			"flow", flow,
			"user_id", userID,
			"tenant_id", tenantID,
			"provider_id", providerID,
			"result", result,
			"error", err,
		)
	} else {
		s.logger.InfoContext(ctx, "verification flow handled",
			"flow", flow,
			"user_id", userID,
			"tenant_id", tenantID,
			"provider_id", providerID,
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	if s.auditor == nil {
		return
	}
	event := audit.Event{
		TenantID:      tenantID,
		UserID:        userID,
		ProviderID:    providerID,
		Action:        flowAction(flow),
		WorkflowRunID: req.WorkflowRunID,
		ClaimURIs:     req.ClaimURIs,
		RequestID:     middleware.GetRequestID(ctx),
	}
	device := middleware.GetDevice(ctx)
	event.Browser = device.Browser
	event.OS = device.OS
	event.Mobile = device.Mobile
	if err != nil {
		event.Action = audit.ActionVerificationFailed
		event.Reason = err.Error()
	}
	s.auditor.Emit(event)
}

func flowAction(flow models.FlowStatus) audit.Action {
	switch flow {
	case models.FlowComplete:
		return audit.ActionVerificationCompleted
	case models.FlowResume:
		return audit.ActionVerificationResumed
	default:
		return audit.ActionVerificationInitiated
	}
}

// timeRemote wraps one remote provider call with a latency observation.
func (s *Service) timeRemote(operation string, call func() error) error {
	start := time.Now()
	err := call()
	s.metrics.ObserveProviderLatency(operation, time.Since(start))
	return err
}
