package audit

import "time"

// Action identifies what happened to a verification flow or a provider record.
type Action string

const (
	ActionVerificationInitiated Action = "verification_initiated"
	ActionVerificationCompleted Action = "verification_completed"
	ActionVerificationResumed   Action = "verification_resumed"
	ActionVerificationFailed    Action = "verification_failed"

	ActionProviderCreated  Action = "provider_created"
	ActionProviderEnabled  Action = "provider_enabled"
	ActionProviderDisabled Action = "provider_disabled"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp     time.Time `json:"timestamp"`
	TenantID      string    `json:"tenant_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	ProviderID    string    `json:"provider_id,omitempty"`
	Action        Action    `json:"action"`
	WorkflowRunID string    `json:"workflow_run_id,omitempty"`
	ClaimURIs     []string  `json:"claim_uris,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	// Request correlation and client device context, filled from the
	// HTTP layer when available.
	RequestID string `json:"request_id,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Mobile    bool   `json:"mobile,omitempty"`
}
