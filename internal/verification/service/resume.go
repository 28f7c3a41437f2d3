package service

import (
	"context"

	pmodels "veriflow/internal/provider/models"
	"veriflow/internal/verification/models"
	dErrors "veriflow/pkg/domain-errors"
)

// resume re-issues an SDK token for a run stalled on user input. Nothing is
// persisted: applicant and run ids are unchanged, and the fresh token rides
// on the response only.
func (s *Service) resume(ctx context.Context, userID, tenantID string, provider *pmodels.Provider, cfg pmodels.RemoteConfig, runID string) ([]models.ClaimResult, error) {
	claims, err := s.claimsForRun(ctx, runID, provider.ID, tenantID)
	if err != nil {
		return nil, err
	}

	// All claims of a run share applicant id and status; the first claim
	// speaks for the set.
	recorded, err := claims[0].WorkflowStatus()
	if err != nil {
		return nil, dErrors.Wrapf(err, dErrors.CodeInternal, "claim %s carries an unreadable workflow status", claims[0].ClaimURI)
	}
	if recorded.Category() != models.CategoryAwaitingInput {
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"reinitiation not allowed: workflow run %s is %s, not awaiting input", runID, recorded)
	}

	applicantID := claims[0].ApplicantID()
	if applicantID == "" {
		return nil, dErrors.Newf(dErrors.CodeInternal, "claim metadata for workflow run %s is missing the applicant id", runID)
	}

	var token string
	err = s.timeRemote("create_sdk_token", func() error {
		var err error
		token, err = s.client.CreateSDKToken(ctx, cfg, applicantID)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrapf(err, dErrors.CodeInternal, "create sdk token for user %s", userID)
	}

	return models.Results(claims, token), nil
}
