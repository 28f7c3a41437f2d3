package service

import (
	"context"

	pmodels "veriflow/internal/provider/models"
	"veriflow/internal/verification/models"
	dErrors "veriflow/pkg/domain-errors"
)

// complete polls the remote workflow run once and reconciles its status into
// the claims tagged with that run. One poll per call, no retry; callers own
// any retry policy.
//
// Terminal remote statuses are never written through: completion is
// authoritative only via the asynchronous webhook, so a poll observing a
// terminal state records "processing" instead. Writing the terminal value
// here would let a caller's poll mark a claim approved before the webhook
// has been received and cross-checked.
func (s *Service) complete(ctx context.Context, userID, tenantID string, provider *pmodels.Provider, cfg pmodels.RemoteConfig, runID string) ([]models.ClaimResult, error) {
	var statusStr string
	err := s.timeRemote("get_workflow_run_status", func() error {
		var err error
		statusStr, err = s.client.WorkflowRunStatus(ctx, cfg, runID)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrapf(err, dErrors.CodeInternal, "poll workflow run %s", runID)
	}
	status, err := models.ParseWorkflowRunStatus(statusStr)
	if err != nil {
		return nil, err
	}

	claims, err := s.claimsForRun(ctx, runID, provider.ID, tenantID)
	if err != nil {
		return nil, err
	}

	recorded := status
	if status.Category() == models.CategoryEnding {
		recorded = models.StatusProcessing
	}

	for _, claim := range claims {
		if claim.Verified {
			continue
		}
		claim.SetWorkflowStatus(recorded)
		if err := s.claims.Update(ctx, userID, claim, tenantID); err != nil {
			return nil, dErrors.Wrapf(err, dErrors.CodeInternal, "update claim %s", claim.ClaimURI)
		}
	}

	return models.Results(claims, ""), nil
}

// claimsForRun loads the claims tagged with a workflow-run id. An empty
// result means the caller referenced a run this service never initiated.
func (s *Service) claimsForRun(ctx context.Context, runID, providerID, tenantID string) ([]*models.Claim, error) {
	claims, err := s.claims.ClaimsByMetadata(ctx, models.MetaWorkflowRunID, runID, providerID, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load claims for workflow run")
	}
	if len(claims) == 0 {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no verification in progress for workflow run %s", runID)
	}
	return claims, nil
}
