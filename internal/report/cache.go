// Package report computes tenant-scoped aggregate reports behind a TTL cache.
//
// Entries are keyed by (report type, scope key) where the scope key is the
// tenant's company UUID or a global marker for super-admins, so one tenant's
// snapshot can never answer another tenant's request. Concurrent misses for
// the same key may both compute; reports are read-mostly and idempotent to
// recompute, so the duplicate write is tolerated instead of serialized.
package report

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// Entry is one cached report snapshot.
type Entry struct {
	ReportType string
	ScopeKey   string
	Payload    json.RawMessage
	ComputedAt time.Time
}

// Fresh reports whether the entry is still inside its TTL window.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.ComputedAt) < ttl
}

// CacheStore is the persistence contract for report snapshots.
type CacheStore interface {
	// Get returns the entry for (reportType, scopeKey) or sentinel.ErrNotFound.
	Get(ctx context.Context, reportType, scopeKey string) (*Entry, error)
	// Put writes through, overwriting any previous entry for the same key.
	Put(ctx context.Context, e *Entry) error
}

// InMemoryCache keeps snapshots in a map for tests and the demo environment.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]*Entry)}
}

func cacheKey(reportType, scopeKey string) string {
	return reportType + "|" + scopeKey
}

func (c *InMemoryCache) Get(_ context.Context, reportType, scopeKey string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[cacheKey(reportType, scopeKey)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	cp.Payload = append(json.RawMessage(nil), e.Payload...)
	return &cp, nil
}

func (c *InMemoryCache) Put(_ context.Context, e *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *e
	cp.Payload = append(json.RawMessage(nil), e.Payload...)
	c.entries[cacheKey(e.ReportType, e.ScopeKey)] = &cp
	return nil
}
