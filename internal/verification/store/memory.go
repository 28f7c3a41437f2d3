// Package store persists verification claims. Both implementations enforce
// the same boundary rule: the sdk_token metadata key is stripped on every
// write, so an issued token can never reach durable storage.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"veriflow/internal/verification/models"
	"veriflow/pkg/platform/sentinel"
)

type claimKey struct {
	tenantID   string
	providerID string
	userID     string
	claimURI   string
}

// Memory is the in-memory claim store used in tests and when Postgres is not
// configured. Claims are deep-copied on read and write so callers mutating a
// returned claim (for instance, attaching a response-only token) cannot reach
// into stored state.
type Memory struct {
	mu     sync.RWMutex
	claims map[claimKey]*models.Claim
}

func NewMemory() *Memory {
	return &Memory{claims: make(map[claimKey]*models.Claim)}
}

func (m *Memory) ClaimsByUser(ctx context.Context, userID, providerID, tenantID string) ([]*models.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Claim
	for k, c := range m.claims {
		if k.userID == userID && k.providerID == providerID && k.tenantID == tenantID {
			out = append(out, copyClaim(c))
		}
	}
	return out, nil
}

func (m *Memory) ClaimsByMetadata(ctx context.Context, field, value, providerID, tenantID string) ([]*models.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Claim
	for k, c := range m.claims {
		if k.providerID != providerID || k.tenantID != tenantID {
			continue
		}
		if v, ok := c.Metadata[field].(string); ok && v == value {
			out = append(out, copyClaim(c))
		}
	}
	return out, nil
}

func (m *Memory) Claim(ctx context.Context, userID, claimURI, providerID, tenantID string) (*models.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.claims[claimKey{tenantID, providerID, userID, claimURI}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyClaim(c), nil
}

func (m *Memory) SaveAll(ctx context.Context, userID string, claims []*models.Claim, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, c := range claims {
		stored := copyClaim(c)
		stripToken(stored)
		if stored.ID == "" {
			stored.ID = uuid.NewString()
			c.ID = stored.ID
			stored.CreatedAt = now
		}
		stored.UpdatedAt = now
		key := claimKey{tenantID, stored.ProviderID, userID, stored.ClaimURI}
		if prev, ok := m.claims[key]; ok {
			stored.ID = prev.ID
			stored.CreatedAt = prev.CreatedAt
			c.ID = prev.ID
		}
		m.claims[key] = stored
	}
	return nil
}

func (m *Memory) Update(ctx context.Context, userID string, claim *models.Claim, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := claimKey{tenantID, claim.ProviderID, userID, claim.ClaimURI}
	prev, ok := m.claims[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored := copyClaim(claim)
	stripToken(stored)
	stored.ID = prev.ID
	stored.CreatedAt = prev.CreatedAt
	stored.UpdatedAt = time.Now()
	m.claims[key] = stored
	return nil
}

func copyClaim(c *models.Claim) *models.Claim {
	dup := *c
	if c.Metadata != nil {
		dup.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			dup.Metadata[k] = v
		}
	}
	return &dup
}

func stripToken(c *models.Claim) {
	for k := range c.Metadata {
		// case-insensitive on the off chance a caller hand-built the key
		if strings.EqualFold(k, models.MetaSDKToken) {
			delete(c.Metadata, k)
		}
	}
}
