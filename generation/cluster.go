package generation

import (
	"context"
	"sync/atomic"
)

// Cluster is the outermost generation: bumping it abandons every key of every
// type at once without touching any per-type counter.
type Cluster interface {
	Current(ctx context.Context) (int64, error)
	Bump(ctx context.Context) (int64, error)
}

// LocalCluster keeps the cluster generation in process memory. Use it when a
// single process owns the cache (or each process owns its own provider).
type LocalCluster struct {
	n atomic.Int64
}

var _ Cluster = (*LocalCluster)(nil)

func NewLocalCluster() *LocalCluster {
	c := &LocalCluster{}
	c.n.Store(Initial)
	return c
}

func (c *LocalCluster) Current(context.Context) (int64, error) { return c.n.Load(), nil }
func (c *LocalCluster) Bump(context.Context) (int64, error)    { return c.n.Add(1), nil }

// ProviderCluster shares the cluster generation through the provider, so every
// server using the same distributed provider flushes together.
type ProviderCluster struct {
	m   *Manager
	key string
}

var _ Cluster = (*ProviderCluster)(nil)

// DefaultClusterKey is the provider key used when none is given.
const DefaultClusterKey = "#gencache/ClusterGeneration"

func NewProviderCluster(m *Manager, key string) *ProviderCluster {
	if key == "" {
		key = DefaultClusterKey
	}
	return &ProviderCluster{m: m, key: key}
}

func (c *ProviderCluster) Current(ctx context.Context) (int64, error) {
	return c.m.Lookup(ctx, c.key)
}

func (c *ProviderCluster) Bump(ctx context.Context) (int64, error) {
	return c.m.Increment(ctx, c.key)
}
