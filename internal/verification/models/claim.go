package models

import "time"

// Metadata keys written onto claims during orchestration. The key names are
// part of the persisted format and shared with the webhook subsystem; do not
// rename them without a migration.
const (
	MetaApplicantID    = "onfido_applicant_id"
	MetaWorkflowRunID  = "onfido_workflow_run_id"
	MetaWorkflowStatus = "onfido_workflow_status"

	// MetaSDKToken is attached to responses only. The claim stores strip it
	// on write so the token can never be persisted.
	MetaSDKToken = "sdk_token"
)

// Claim is one unit of user attribute verification. Claims sharing a remote
// applicant carry the same applicant id in metadata; claims sharing a
// workflow run carry the same run id.
//
// Invariants:
//   - Verified stays false until the webhook subsystem flips it; this
//     service never sets it true.
//   - Once initiated, Metadata carries applicant id, workflow-run id, and a
//     workflow status string.
type Claim struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	TenantID   string         `json:"tenant_id"`
	ProviderID string         `json:"provider_id"`
	ClaimURI   string         `json:"claim_uri"`
	Verified   bool           `json:"verified"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ApplicantID returns the remote applicant id from metadata, empty when the
// claim has never been submitted.
func (c *Claim) ApplicantID() string {
	return c.metaString(MetaApplicantID)
}

// WorkflowRunID returns the remote workflow-run id from metadata.
func (c *Claim) WorkflowRunID() string {
	return c.metaString(MetaWorkflowRunID)
}

// WorkflowStatus parses the recorded workflow status. Errors indicate
// corrupted metadata, which callers treat as server-class.
func (c *Claim) WorkflowStatus() (WorkflowRunStatus, error) {
	return ParseWorkflowRunStatus(c.metaString(MetaWorkflowStatus))
}

// SetWorkflowStatus records the status string in metadata.
func (c *Claim) SetWorkflowStatus(status WorkflowRunStatus) {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	c.Metadata[MetaWorkflowStatus] = status.String()
}

func (c *Claim) metaString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	v, _ := c.Metadata[key].(string)
	return v
}

// InitiatedMetadata builds the metadata bag stamped onto every claim when a
// verification run starts.
func InitiatedMetadata(applicantID, workflowRunID string) map[string]any {
	return map[string]any{
		MetaApplicantID:    applicantID,
		MetaWorkflowRunID:  workflowRunID,
		MetaWorkflowStatus: StatusAwaitingInput.String(),
	}
}

// ClaimResult is the response shape: a claim plus the SDK token issued for
// this call. Keeping the token out of Claim makes "token is never persisted"
// a property of the types instead of call-order discipline.
type ClaimResult struct {
	Claim
	SDKToken string `json:"sdk_token,omitempty"`
}

// Results pairs claims with a shared token for the response payload.
func Results(claims []*Claim, sdkToken string) []ClaimResult {
	out := make([]ClaimResult, 0, len(claims))
	for _, c := range claims {
		out = append(out, ClaimResult{Claim: *c, SDKToken: sdkToken})
	}
	return out
}
