package service

import (
	"context"
	"errors"
	"strings"

	pmodels "veriflow/internal/provider/models"
	"veriflow/internal/verification/models"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/sentinel"
)

// initiate runs the full start-verification sequence: resolve which claims
// still need a fresh remote submission, create or update the remote
// applicant, start a workflow run, issue an SDK token, and persist claim
// metadata. The per-(user, provider) lock covers the whole read-then-write
// sequence so two concurrent initiations cannot both miss the existing
// applicant and create duplicates.
//
// Remote failures mid-sequence are not rolled back: an applicant created
// before a workflow-run failure stays remote, and the next initiation
// discovers and reuses its id through the claim scan.
func (s *Service) initiate(ctx context.Context, userID, tenantID string, provider *pmodels.Provider, cfg pmodels.RemoteConfig, claimURIs []string) ([]models.ClaimResult, error) {
	if len(claimURIs) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "claims are required to initiate verification")
	}

	release, err := s.locker.Acquire(ctx, userID+"/"+provider.ID, s.lockTTL)
	if err != nil {
		if errors.Is(err, sentinel.ErrLockHeld) {
			return nil, dErrors.New(dErrors.CodeConflict, "verification already in progress for this user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "acquire initiation lock")
	}
	defer release()

	existing, err := s.claims.ClaimsByUser(ctx, userID, provider.ID, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load existing claims")
	}

	// One applicant per user per provider, shared across claims. Any claim
	// from an earlier attempt tells us the applicant already exists.
	applicantID := firstApplicantID(existing)

	fields, pending, err := s.resolveUnverified(ctx, userID, tenantID, provider, claimURIs)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, dErrors.New(dErrors.CodeConflict, "verification already initiated for the requested claims")
	}

	if applicantID == "" {
		err = s.timeRemote("create_applicant", func() error {
			applicantID, err = s.client.CreateApplicant(ctx, cfg, fields)
			return err
		})
		if err != nil {
			return nil, dErrors.Wrapf(err, dErrors.CodeInternal, "create applicant for user %s", userID)
		}
	} else {
		err = s.timeRemote("update_applicant", func() error {
			return s.client.UpdateApplicant(ctx, cfg, fields, applicantID)
		})
		if err != nil {
			return nil, dErrors.Wrapf(err, dErrors.CodeInternal, "update applicant for user %s", userID)
		}
	}

	var runID string
	err = s.timeRemote("create_workflow_run", func() error {
		runID, err = s.client.CreateWorkflowRun(ctx, cfg, cfg.WorkflowID, applicantID)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrapf(err, dErrors.CodeInternal, "create workflow run for user %s", userID)
	}

	var token string
	err = s.timeRemote("create_sdk_token", func() error {
		token, err = s.client.CreateSDKToken(ctx, cfg, applicantID)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrapf(err, dErrors.CodeInternal, "create sdk token for user %s", userID)
	}

	claims := make([]*models.Claim, 0, len(pending))
	for _, uri := range pending {
		claims = append(claims, &models.Claim{
			UserID:     userID,
			TenantID:   tenantID,
			ProviderID: provider.ID,
			ClaimURI:   uri,
			Verified:   false,
			Metadata:   models.InitiatedMetadata(applicantID, runID),
		})
	}
	if err := s.claims.SaveAll(ctx, userID, claims, tenantID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist initiated claims")
	}

	// The token rides on the response only, attached after persistence.
	return models.Results(claims, token), nil
}

// resolveUnverified maps each requested claim still needing a remote
// submission onto its remote field name and current attribute value. Claims
// already tied to an applicant are in-flight or previously handled and are
// excluded rather than re-submitted.
func (s *Service) resolveUnverified(ctx context.Context, userID, tenantID string, provider *pmodels.Provider, claimURIs []string) (map[string]string, []string, error) {
	fields := make(map[string]string)
	var pending []string
	seen := make(map[string]struct{})

	for _, uri := range claimURIs {
		uri = strings.TrimSpace(uri)
		if uri == "" {
			return nil, nil, dErrors.New(dErrors.CodeBadRequest, "claim URI must not be blank")
		}
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}

		claim, err := s.claims.Claim(ctx, userID, uri, provider.ID, tenantID)
		switch {
		case err == nil:
			if claim.ApplicantID() != "" {
				continue
			}
		case errors.Is(err, sentinel.ErrNotFound):
			// first submission for this claim
		default:
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "load claim record")
		}

		value, err := s.attributes.AttributeValue(ctx, userID, uri, tenantID)
		if err != nil {
			if errors.Is(err, sentinel.ErrUserNotFound) {
				s.logger.ErrorContext(ctx, "user missing from attribute store",
					"user_id", userID,
					"tenant_id", tenantID,
					"claim_uri", uri,
				)
				return nil, nil, dErrors.Wrapf(err, dErrors.CodeInternal, "user %s not found in attribute store", userID)
			}
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, nil, dErrors.Newf(dErrors.CodeBadRequest, "claim %s has no value to verify", uri)
			}
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "retrieve provider claim value")
		}
		if strings.TrimSpace(value) == "" {
			return nil, nil, dErrors.Newf(dErrors.CodeBadRequest, "claim %s has no value to verify", uri)
		}

		fields[provider.RemoteField(uri)] = value
		pending = append(pending, uri)
	}
	return fields, pending, nil
}

func firstApplicantID(claims []*models.Claim) string {
	for _, c := range claims {
		if id := c.ApplicantID(); id != "" {
			return id
		}
	}
	return ""
}
