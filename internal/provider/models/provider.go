package models

import (
	"strings"
	"time"

	dErrors "veriflow/pkg/domain-errors"
)

// Required configuration keys for a verification provider. The names match
// the remote provider's administration vocabulary.
const (
	ConfigAPIToken     = "token"
	ConfigBaseURL      = "base_url"
	ConfigWebhookToken = "webhook_token"
	ConfigWorkflowID   = "workflow_id"
)

// Provider is a configured remote verification backend for one tenant.
// Created and edited through provider administration; read-only to the
// orchestration core.
type Provider struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`

	// Config is the raw key-value configuration bag.
	Config map[string]string `json:"config"`

	// ClaimMappings maps local claim URIs onto the remote provider's
	// applicant field names, e.g. "urn:claim:dob" -> "dob".
	ClaimMappings map[string]string `json:"claim_mappings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemoteConfig is the validated, typed view of the configuration bag that
// the remote client consumes. Constructing it is the single validation choke
// point: downstream code never sees a partial config.
type RemoteConfig struct {
	APIToken     string
	BaseURL      string
	WebhookToken string
	WorkflowID   string
}

// Validate checks the provider is usable at all.
func (p *Provider) Validate() error {
	if !p.Enabled {
		return dErrors.New(dErrors.CodeValidation, "verification provider is disabled")
	}
	return nil
}

// RemoteConfig validates the configuration bag and returns the typed view.
// Every required key must be present and non-blank.
func (p *Provider) RemoteConfig() (RemoteConfig, error) {
	cfg := RemoteConfig{
		APIToken:     strings.TrimSpace(p.Config[ConfigAPIToken]),
		BaseURL:      strings.TrimSpace(p.Config[ConfigBaseURL]),
		WebhookToken: strings.TrimSpace(p.Config[ConfigWebhookToken]),
		WorkflowID:   strings.TrimSpace(p.Config[ConfigWorkflowID]),
	}
	if cfg.APIToken == "" || cfg.BaseURL == "" || cfg.WebhookToken == "" || cfg.WorkflowID == "" {
		return RemoteConfig{}, dErrors.New(dErrors.CodeValidation,
			"verification provider configuration is incomplete")
	}
	return cfg, nil
}

// RemoteField resolves the remote field name for a local claim URI. Falls
// back to the URI's last path segment when no mapping is configured.
func (p *Provider) RemoteField(claimURI string) string {
	if name, ok := p.ClaimMappings[claimURI]; ok && name != "" {
		return name
	}
	if idx := strings.LastIndexAny(claimURI, "/:"); idx >= 0 && idx+1 < len(claimURI) {
		return claimURI[idx+1:]
	}
	return claimURI
}
