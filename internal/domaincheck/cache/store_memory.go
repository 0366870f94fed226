// Package cache provides availability-result caches: an in-process store for
// single-instance deployments and a redis store for shared state.
package cache

import (
	"context"
	"sync"
	"time"

	"onboardly/internal/domaincheck"
	"onboardly/pkg/platform/sentinel"
)

// Memory is an in-process availability cache with per-entry expiry.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	result    domaincheck.Result
	expiresAt time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get returns a cached result, or sentinel.ErrNotFound on a miss or an
// expired entry. Expired entries are dropped lazily.
func (m *Memory) Get(_ context.Context, domain string) (*domaincheck.Result, error) {
	m.mu.RLock()
	entry, ok := m.entries[domain]
	m.mu.RUnlock()

	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, domain)
		m.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}

	result := entry.result
	return &result, nil
}

// Set stores a copy of the result until the TTL elapses.
func (m *Memory) Set(_ context.Context, domain string, result *domaincheck.Result, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[domain] = memoryEntry{
		result:    *result,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}
