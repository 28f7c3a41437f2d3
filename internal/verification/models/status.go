package models

import (
	dErrors "veriflow/pkg/domain-errors"
)

// WorkflowRunStatus is the closed set of states a remote workflow run moves
// through. The values are defined by the remote provider; this service only
// classifies them.
type WorkflowRunStatus string

const (
	StatusAwaitingInput WorkflowRunStatus = "awaiting_input"
	StatusProcessing    WorkflowRunStatus = "processing"
	StatusAbandoned     WorkflowRunStatus = "abandoned"
	StatusError         WorkflowRunStatus = "error"
	StatusDeclined      WorkflowRunStatus = "declined"
	StatusApproved      WorkflowRunStatus = "approved"
	StatusReview        WorkflowRunStatus = "review"
)

// StatusCategory partitions workflow-run states for the orchestrator.
type StatusCategory int

const (
	// CategoryAwaitingInput: the run is stalled on user input; resume is
	// allowed only here.
	CategoryAwaitingInput StatusCategory = iota
	// CategoryProcessing: the provider is working; nothing to do but wait.
	CategoryProcessing
	// CategoryEnding: the run concluded remotely. Terminal states are
	// authoritative only via the webhook, never via a synchronous poll.
	CategoryEnding
)

var statusCategories = map[WorkflowRunStatus]StatusCategory{
	StatusAwaitingInput: CategoryAwaitingInput,
	StatusProcessing:    CategoryProcessing,
	StatusAbandoned:     CategoryEnding,
	StatusError:         CategoryEnding,
	StatusDeclined:      CategoryEnding,
	StatusApproved:      CategoryEnding,
	StatusReview:        CategoryEnding,
}

// ParseWorkflowRunStatus maps a remote status string into the closed set.
// Unknown values are rejected rather than passed through, so a provider API
// change cannot silently corrupt claim metadata.
func ParseWorkflowRunStatus(s string) (WorkflowRunStatus, error) {
	status := WorkflowRunStatus(s)
	if _, ok := statusCategories[status]; !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown workflow run status %q", s)
	}
	return status, nil
}

// Category returns the classification; total over the closed set.
func (s WorkflowRunStatus) Category() StatusCategory {
	return statusCategories[s]
}

// IsEnding reports whether the status is terminal.
func (s WorkflowRunStatus) IsEnding() bool {
	return s.Category() == CategoryEnding
}

func (s WorkflowRunStatus) String() string {
	return string(s)
}
