package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriflow/internal/provider/models"
	"veriflow/internal/provider/store"
	dErrors "veriflow/pkg/domain-errors"
)

func validProvider() *models.Provider {
	return &models.Provider{
		TenantID: "tenant-1",
		Name:     "Onfido",
		Enabled:  true,
		Config: map[string]string{
			models.ConfigAPIToken:     "api-token",
			models.ConfigBaseURL:      "https://api.onfido.test",
			models.ConfigWebhookToken: "webhook-token",
			models.ConfigWorkflowID:   "workflow-1",
		},
		ClaimMappings: map[string]string{"https://claims.example.org/dob": "dob"},
	}
}

func TestCreateAssignsIDAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory())

	created, err := svc.Create(ctx, validProvider())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "Onfido", got.Name)
	assert.Equal(t, "dob", got.ClaimMappings["https://claims.example.org/dob"])
}

func TestCreateRejectsIncompleteConfig(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory())

	p := validProvider()
	delete(p.Config, models.ConfigWorkflowID)
	_, err := svc.Create(ctx, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCreateRejectsMissingName(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory())

	p := validProvider()
	p.Name = "   "
	_, err := svc.Create(ctx, p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory())

	p := validProvider()
	p.ID = "fixed-id"
	_, err := svc.Create(ctx, p)
	require.NoError(t, err)

	dup := validProvider()
	dup.ID = "fixed-id"
	_, err = svc.Create(ctx, dup)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestGetUnknownProviderIsNotFound(t *testing.T) {
	svc := New(store.NewMemory())

	_, err := svc.Get(context.Background(), "nope", "tenant-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSetEnabledFlipsFlag(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory())

	created, err := svc.Create(ctx, validProvider())
	require.NoError(t, err)

	disabled, err := svc.SetEnabled(ctx, created.ID, "tenant-1", false)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)

	enabled, err := svc.SetEnabled(ctx, created.ID, "tenant-1", true)
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)
}

func TestSetEnabledUnknownProviderIsNotFound(t *testing.T) {
	svc := New(store.NewMemory())

	_, err := svc.SetEnabled(context.Background(), "nope", "tenant-1", false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory())

	created, err := svc.Create(ctx, validProvider())
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.ID, "other-tenant")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
