// Package store persists verification provider configuration per tenant.
package store

import (
	"context"
	"sync"
	"time"

	"veriflow/internal/provider/models"
	"veriflow/pkg/platform/sentinel"
)

type providerKey struct {
	tenantID string
	id       string
}

// Memory is the in-memory provider store.
type Memory struct {
	mu        sync.RWMutex
	providers map[providerKey]*models.Provider
}

func NewMemory() *Memory {
	return &Memory{providers: make(map[providerKey]*models.Provider)}
}

func (m *Memory) Create(ctx context.Context, p *models.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := providerKey{p.TenantID, p.ID}
	if _, ok := m.providers[key]; ok {
		return sentinel.ErrConflict
	}
	m.providers[key] = copyProvider(p)
	return nil
}

func (m *Memory) Get(ctx context.Context, id, tenantID string) (*models.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.providers[providerKey{tenantID, id}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyProvider(p), nil
}

func (m *Memory) SetEnabled(ctx context.Context, id, tenantID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.providers[providerKey{tenantID, id}]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Enabled = enabled
	p.UpdatedAt = time.Now()
	return nil
}

func copyProvider(p *models.Provider) *models.Provider {
	dup := *p
	if p.Config != nil {
		dup.Config = make(map[string]string, len(p.Config))
		for k, v := range p.Config {
			dup.Config[k] = v
		}
	}
	if p.ClaimMappings != nil {
		dup.ClaimMappings = make(map[string]string, len(p.ClaimMappings))
		for k, v := range p.ClaimMappings {
			dup.ClaimMappings[k] = v
		}
	}
	return &dup
}
