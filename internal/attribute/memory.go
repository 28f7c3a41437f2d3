// Package attribute reads user attribute values from the platform's user
// store. The orchestrator only reads; writes happen elsewhere in the
// platform.
package attribute

import (
	"context"
	"sync"

	"veriflow/pkg/platform/sentinel"
)

type userKey struct {
	tenantID string
	userID   string
}

// Memory is the in-memory attribute store for tests and local development.
type Memory struct {
	mu    sync.RWMutex
	users map[userKey]map[string]string
}

func NewMemory() *Memory {
	return &Memory{users: make(map[userKey]map[string]string)}
}

// SetUser registers a user with the given attribute map, replacing any
// previous attributes.
func (m *Memory) SetUser(userID, tenantID string, attrs map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dup := make(map[string]string, len(attrs))
	for k, v := range attrs {
		dup[k] = v
	}
	m.users[userKey{tenantID, userID}] = dup
}

// AttributeValue returns the value of one attribute. A missing user yields
// sentinel.ErrUserNotFound, which services must surface rather than swallow;
// a missing attribute on an existing user yields sentinel.ErrNotFound.
func (m *Memory) AttributeValue(ctx context.Context, userID, claimURI, tenantID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	attrs, ok := m.users[userKey{tenantID, userID}]
	if !ok {
		return "", sentinel.ErrUserNotFound
	}
	value, ok := attrs[claimURI]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return value, nil
}
