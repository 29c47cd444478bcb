package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/gencache/internal/pinned"
	pr "github.com/unkn0wn-root/gencache/provider"
)

// Provider stores evictable entries in Ristretto and pinned ones (counters)
// beside it, since Ristretto may drop or refuse any Set.
type Provider struct {
	c *rc.Cache
	s *pinned.Store
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost returns the admission cost of a value; nil => len(value).
	Cost func(value []byte) int64
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	cost := cfg.Cost
	if cost == nil {
		cost = func(v []byte) int64 { return int64(len(v)) }
	}
	return &Provider{c: c, s: pinned.New(backend{c: c, cost: cost})}, nil
}

type backend struct {
	c    *rc.Cache
	cost func([]byte) int64
}

func (b backend) Load(key string) ([]byte, bool, error) {
	v, ok := b.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	raw, _ := v.([]byte)
	if raw == nil {
		// self-heal: drop unexpected entry shape
		b.c.Del(key)
		return nil, false, nil
	}
	return raw, true, nil
}

func (b backend) Store(key string, value []byte, ttl time.Duration) (bool, error) {
	ok := b.c.SetWithTTL(key, value, b.cost(value), ttl)
	// Sets are buffered; make the write visible before returning.
	b.c.Wait()
	return ok, nil
}

func (b backend) Remove(key string) error {
	b.c.Del(key)
	return nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	return p.s.Get(key)
}

func (p *Provider) Set(_ context.Context, key string, value []byte, prio pr.Priority, ttl time.Duration) (bool, error) {
	return p.s.Set(key, value, prio, ttl)
}

func (p *Provider) Clear(_ context.Context, key string) error {
	return p.s.Clear(key)
}

func (p *Provider) Exists(_ context.Context, key string) (bool, error) {
	_, ok, err := p.s.Get(key)
	return ok, err
}

func (p *Provider) Increment(_ context.Context, key string, defaultValue, delta int64, prio pr.Priority) (int64, error) {
	return p.s.Increment(key, defaultValue, delta, prio)
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes Ristretto's counters when Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
