package sturdyc

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/unkn0wn-root/gencache/internal/pinned"
	pr "github.com/unkn0wn-root/gencache/provider"
)

// Config mirrors the sturdyc constructor arguments.
type Config struct {
	// Capacity is the maximum number of evictable entries. Must be > 0.
	Capacity int
	// NumShards splits the keyspace for concurrent access. Must be > 0.
	NumShards int
	// TTL applies to every evictable entry; sturdyc has no per-entry TTL.
	TTL time.Duration
	// EvictionPercentage is how much of a full shard is evicted at once (1-100).
	EvictionPercentage int
	// EvictionInterval sets the background expiry sweep; 0 => sturdyc default.
	EvictionInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ConfigError reports the first invalid Config field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "sturdyc: config error in field " + e.Field + ": " + e.Message
}

func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

type Provider struct {
	c *sturdyc.Client[[]byte]
	s *pinned.Store
}

var _ pr.Provider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}
	c := sturdyc.New[[]byte](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage, opts...)
	return &Provider{c: c, s: pinned.New(backend{c: c})}, nil
}

type backend struct{ c *sturdyc.Client[[]byte] }

func (b backend) Load(key string) ([]byte, bool, error) {
	v, ok := b.c.Get(key)
	return v, ok, nil
}

// Store ignores ttl: the client-wide TTL applies.
func (b backend) Store(key string, value []byte, _ time.Duration) (bool, error) {
	b.c.Set(key, value)
	return true, nil
}

func (b backend) Remove(key string) error {
	b.c.Delete(key)
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

// Close is a no-op; sturdyc has no resources to release.
func (p *Provider) Close(context.Context) error { return nil }
