// Package lock provides the per-identity critical section around
// initiation's check-then-create sequence. Two initiations for the same
// (user, provider) pair must never interleave between "scan for existing
// applicant" and "persist claims".
package lock

import (
	"context"
	"sync"
	"time"

	"veriflow/pkg/platform/sentinel"
)

// Memory is the in-process lock used when Redis is not configured. It only
// excludes requests inside one process; multi-instance deployments need the
// Redis lock.
type Memory struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]struct{})}
}

// Acquire takes the lock for key, returning a release func. If the lock is
// already held it fails immediately with sentinel.ErrLockHeld; initiation is
// not a workload worth queueing for.
func (m *Memory) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[key]; ok {
		return nil, sentinel.ErrLockHeld
	}
	m.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
	}

	// TTL parity with the Redis lock: a leaked lock frees itself so one
	// crashed request cannot wedge a user forever.
	timer := time.AfterFunc(ttl, release)
	return func() {
		timer.Stop()
		release()
	}, nil
}
