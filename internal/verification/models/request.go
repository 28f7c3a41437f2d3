package models

import (
	"strings"

	dErrors "veriflow/pkg/domain-errors"
)

// FlowStatus is the signal a caller sends to pick one of the three
// orchestration operations.
type FlowStatus string

const (
	FlowInitiate FlowStatus = "INITIATED"
	FlowComplete FlowStatus = "COMPLETED"
	FlowResume   FlowStatus = "REINITIATED"
)

// ParseFlowStatus validates the flow-status property. Matching is
// case-insensitive; anything outside the three literals is a bad request,
// rejected before any collaborator call.
func ParseFlowStatus(s string) (FlowStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(FlowInitiate):
		return FlowInitiate, nil
	case string(FlowComplete):
		return FlowComplete, nil
	case string(FlowResume):
		return FlowResume, nil
	case "":
		return "", dErrors.New(dErrors.CodeBadRequest, "flow status is required")
	default:
		return "", dErrors.Newf(dErrors.CodeBadRequest, "invalid flow status %q", s)
	}
}

// Request is the inbound unit of work. ProviderID and Status are always
// required; ClaimURIs is required on initiation; WorkflowRunID is required on
// completion and resume.
type Request struct {
	ProviderID    string   `json:"provider_id"`
	Status        string   `json:"status"`
	WorkflowRunID string   `json:"workflow_run_id,omitempty"`
	ClaimURIs     []string `json:"claims,omitempty"`
}

// Flow extracts and validates the flow-status property.
func (r Request) Flow() (FlowStatus, error) {
	return ParseFlowStatus(r.Status)
}

// ProviderRef extracts the provider reference.
func (r Request) ProviderRef() (string, error) {
	id := strings.TrimSpace(r.ProviderID)
	if id == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "provider_id is required")
	}
	return id, nil
}

// RunID extracts the workflow-run id, required for complete and resume.
func (r Request) RunID() (string, error) {
	id := strings.TrimSpace(r.WorkflowRunID)
	if id == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "workflow_run_id is required")
	}
	return id, nil
}
