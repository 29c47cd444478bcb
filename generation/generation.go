// Package generation maintains the monotonically increasing counters that
// scope gencache keys: per type, per (type, partition value) and cluster-wide.
//
// Counters live in the Provider with PriorityNeverRemove. An absent counter
// reads as 1 and is never deleted; invalidation is an Increment.
package generation

import (
	"context"
	"errors"

	pr "github.com/unkn0wn-root/gencache/provider"
)

// Initial is the implicit value of a counter that was never incremented.
const Initial int64 = 1

var ErrNilProvider = errors.New("generation: provider is required")

// Manager reads and bumps generation counters held by a Provider.
type Manager struct {
	p pr.Provider
}

func NewManager(p pr.Provider) (*Manager, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	return &Manager{p: p}, nil
}

// Get returns the current generation for scopeKey. Absence and provider
// errors both read as Initial.
func (m *Manager) Get(ctx context.Context, scopeKey string) int64 {
	g, err := m.Lookup(ctx, scopeKey)
	if err != nil {
		return Initial
	}
	return g
}

// Lookup is Get with the provider error surfaced, for callers that would
// rather skip the cache than build a key from a guessed generation.
func (m *Manager) Lookup(ctx context.Context, scopeKey string) (int64, error) {
	raw, ok, err := m.p.Get(ctx, scopeKey)
	if err != nil {
		return Initial, err
	}
	if !ok {
		return Initial, nil
	}
	g, err := pr.ParseCounter(raw)
	if err != nil {
		return Initial, err
	}
	return g, nil
}

// Increment atomically bumps scopeKey and returns the new generation. The
// counter is written with PriorityNeverRemove so eviction cannot reset it.
func (m *Manager) Increment(ctx context.Context, scopeKey string) (int64, error) {
	return m.p.Increment(ctx, scopeKey, Initial, 1, pr.PriorityNeverRemove)
}
