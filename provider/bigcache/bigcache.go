package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/gencache/internal/pinned"
	pr "github.com/unkn0wn-root/gencache/provider"
)

type Provider struct {
	c *bc.BigCache
	s *pinned.Store
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, s: pinned.New(backend{c: c})}, nil
}

type backend struct{ c *bc.BigCache }

func (b backend) Load(key string) ([]byte, bool, error) {
	v, err := b.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Store ignores ttl: BigCache only has the global LifeWindow.
func (b backend) Store(key string, value []byte, _ time.Duration) (bool, error) {
	if err := b.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (b backend) Remove(key string) error {
	err := b.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
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
	return p.c.Close()
}
