// Package onfido implements the HTTP client for the remote verification
// provider's API: applicant management, workflow runs, and SDK tokens.
package onfido

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"veriflow/internal/provider/models"
)

const apiTimeout = 30 * time.Second

// APIError is a non-2xx provider response. Kept typed so callers and tests
// can distinguish remote rejections from transport failures.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("onfido api: status %d: %s", e.Status, e.Body)
}

// Client talks to the provider's REST API. The base URL and API token come
// from tenant provider configuration per call, so one client serves all
// tenants.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: apiTimeout}}
}

// NewClientWithHTTP injects a transport; used by tests.
func NewClientWithHTTP(h *http.Client) *Client {
	return &Client{http: h}
}

// CreateApplicant registers a new applicant from flat field values and
// returns its id.
func (c *Client) CreateApplicant(ctx context.Context, cfg models.RemoteConfig, fields map[string]string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, cfg, http.MethodPost, "/applicants", fields, &out); err != nil {
		return "", fmt.Errorf("create applicant: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("create applicant: response missing id")
	}
	return out.ID, nil
}

// UpdateApplicant overwrites field values on an existing applicant.
func (c *Client) UpdateApplicant(ctx context.Context, cfg models.RemoteConfig, fields map[string]string, applicantID string) error {
	path := "/applicants/" + applicantID
	if err := c.do(ctx, cfg, http.MethodPut, path, fields, nil); err != nil {
		return fmt.Errorf("update applicant %s: %w", applicantID, err)
	}
	return nil
}

// CreateWorkflowRun starts a run of the configured workflow for an applicant
// and returns the run id.
func (c *Client) CreateWorkflowRun(ctx context.Context, cfg models.RemoteConfig, workflowID, applicantID string) (string, error) {
	body := map[string]string{
		"workflow_id":  workflowID,
		"applicant_id": applicantID,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, cfg, http.MethodPost, "/workflow_runs", body, &out); err != nil {
		return "", fmt.Errorf("create workflow run: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("create workflow run: response missing id")
	}
	return out.ID, nil
}

// CreateSDKToken issues a short-lived token that the front-end SDK uses to
// drive the applicant through document capture.
func (c *Client) CreateSDKToken(ctx context.Context, cfg models.RemoteConfig, applicantID string) (string, error) {
	body := map[string]string{"applicant_id": applicantID}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, cfg, http.MethodPost, "/sdk_token", body, &out); err != nil {
		return "", fmt.Errorf("create sdk token: %w", err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("create sdk token: response missing token")
	}
	return out.Token, nil
}

// WorkflowRunStatus polls the current status string of a workflow run.
func (c *Client) WorkflowRunStatus(ctx context.Context, cfg models.RemoteConfig, runID string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, cfg, http.MethodGet, "/workflow_runs/"+runID, nil, &out); err != nil {
		return "", fmt.Errorf("get workflow run status: %w", err)
	}
	return out.Status, nil
}

func (c *Client) do(ctx context.Context, cfg models.RemoteConfig, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := strings.TrimSuffix(cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token token="+cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Bounded read: provider error bodies are small, but do not trust that.
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
