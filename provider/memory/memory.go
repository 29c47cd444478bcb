// Package memory is the reference in-process Provider: a mutex-guarded map with
// lazy TTL expiry, an optional entry cap and an optional sweep loop.
package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/gencache/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
	p   pr.Priority
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

// Config tunes the memory provider. The zero value is unbounded with no sweep.
type Config struct {
	// MaxEntries caps evictable (PriorityDefault) entries; 0 = unlimited.
	// Pinned entries do not count toward the cap and are never evicted.
	MaxEntries int
	// CleanupInterval runs a background sweep of expired entries; 0 = lazy only.
	CleanupInterval time.Duration
}

type Provider struct {
	mu        sync.Mutex
	m         map[string]entry
	evictable int
	max       int

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ pr.Provider = (*Provider)(nil)

func New(cfg Config) *Provider {
	p := &Provider{m: make(map[string]entry), max: cfg.MaxEntries}
	if cfg.CleanupInterval > 0 {
		p.ticker = time.NewTicker(cfg.CleanupInterval)
		p.stopCh = make(chan struct{})
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.ticker.C:
					p.Sweep()
				case <-p.stopCh:
					return
				}
			}
		}()
	}
	return p
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.lookupLocked(key, time.Now())
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(e.v), true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, prio pr.Priority, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// callers may reuse value; entries own their bytes
	p.putLocked(key, bytes.Clone(value), prio, ttl)
	return true, nil
}

func (p *Provider) Clear(_ context.Context, key string) error {
	p.mu.Lock()
	p.deleteLocked(key)
	p.mu.Unlock()
	return nil
}

func (p *Provider) Exists(_ context.Context, key string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.lookupLocked(key, time.Now())
	return ok, nil
}

// Increment holds the mutex across the whole read-modify-write.
func (p *Provider) Increment(_ context.Context, key string, defaultValue, delta int64, prio pr.Priority) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := defaultValue
	if e, ok := p.lookupLocked(key, time.Now()); ok {
		n, err := pr.ParseCounter(e.v)
		if err != nil {
			return 0, err
		}
		cur = n
	}
	next := cur + delta
	p.putLocked(key, pr.FormatCounter(next), prio, 0)
	return next, nil
}

func (p *Provider) Close(_ context.Context) error {
	p.closeOnce.Do(func() {
		if p.stopCh != nil {
			close(p.stopCh)
			p.ticker.Stop()
			p.wg.Wait()
		}
	})
	return nil
}

// Sweep drops every expired entry.
func (p *Provider) Sweep() {
	now := time.Now()
	p.mu.Lock()
	for k, e := range p.m {
		if e.expired(now) {
			p.deleteLocked(k)
		}
	}
	p.mu.Unlock()
}

// Len reports the number of live entries, pinned ones included.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

func (p *Provider) lookupLocked(key string, now time.Time) (entry, bool) {
	e, ok := p.m[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(now) {
		p.deleteLocked(key)
		return entry{}, false
	}
	return e, true
}

func (p *Provider) putLocked(key string, value []byte, prio pr.Priority, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 && prio != pr.PriorityNeverRemove {
		exp = time.Now().Add(ttl)
	}
	p.deleteLocked(key)
	if prio != pr.PriorityNeverRemove {
		p.makeRoomLocked()
		p.evictable++
	}
	p.m[key] = entry{v: value, exp: exp, p: prio}
}

func (p *Provider) deleteLocked(key string) {
	if e, ok := p.m[key]; ok {
		if e.p != pr.PriorityNeverRemove {
			p.evictable--
		}
		delete(p.m, key)
	}
}

// makeRoomLocked evicts expired entries first, then arbitrary evictable ones.
func (p *Provider) makeRoomLocked() {
	if p.max <= 0 || p.evictable < p.max {
		return
	}
	now := time.Now()
	for k, e := range p.m {
		if e.p != pr.PriorityNeverRemove && e.expired(now) {
			p.deleteLocked(k)
		}
	}
	for k, e := range p.m {
		if p.evictable < p.max {
			return
		}
		if e.p != pr.PriorityNeverRemove {
			p.deleteLocked(k)
		}
	}
}
