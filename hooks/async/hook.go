// Package asynchook moves Hooks calls off the request path.
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{
//	    HitEvery:     100, // sample hit/miss logs
//	    CorruptEvery: 10,
//	})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	s, _ := gencache.New[Contact](gencache.Options[Contact]{
//	    Provider: provider,
//	    Codec:    codec.JSON[Contact]{},
//	    Key:      []gencache.KeyField[Contact]{{Name: "ContactID", Value: func(c Contact) any { return c.ContactID }}},
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/gencache"
)

// Hooks forwards events to inner through a bounded queue. Events are
// dropped when the queue is full; Dropped counts them.
type Hooks struct {
	inner gencache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu      sync.Mutex
	dropped uint64
}

var _ gencache.Hooks = (*Hooks)(nil)

func New(inner gencache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		close(h.q)
		h.q = nil
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped is the number of events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

func (h *Hooks) try(f func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.q == nil {
		h.dropped++
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped++
	}
}

func (h *Hooks) Hit(t, op string)  { h.try(func() { h.inner.Hit(t, op) }) }
func (h *Hooks) Miss(t, op string) { h.try(func() { h.inner.Miss(t, op) }) }
func (h *Hooks) ProviderError(op, k string, err error) {
	h.try(func() { h.inner.ProviderError(op, k, err) })
}
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) FingerprintError(t, op string, err error) {
	h.try(func() { h.inner.FingerprintError(t, op, err) })
}
func (h *Hooks) CorruptEntry(k, r string) { h.try(func() { h.inner.CorruptEntry(k, r) }) }
func (h *Hooks) GenerationBumpError(k string, err error) {
	h.try(func() { h.inner.GenerationBumpError(k, err) })
}
func (h *Hooks) ResultTooLarge(t, op string, n, max int) {
	h.try(func() { h.inner.ResultTooLarge(t, op, n, max) })
}
