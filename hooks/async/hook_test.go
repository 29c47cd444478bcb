package asynchook

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/gencache"
)

type recorder struct {
	gencache.NopHooks
	mu   sync.Mutex
	hits int
	gate chan struct{}
}

func (r *recorder) Hit(string, string) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	r.hits++
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits
}

func TestForwardsAndDrainsOnClose(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 2, 100)
	for i := 0; i < 50; i++ {
		h.Hit("Contact", "FindAll")
	}
	h.Close()
	if got := rec.count(); got != 50 {
		t.Fatalf("forwarded %d events, want 50", got)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped=%d want 0", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	rec := &recorder{gate: make(chan struct{})}
	h := New(rec, 1, 1)

	// The worker blocks on the first event, the second fills the queue and
	// the rest are dropped.
	for i := 0; i < 10; i++ {
		h.Hit("Contact", "Get")
	}
	if h.Dropped() < 8 {
		t.Fatalf("dropped=%d want at least 8", h.Dropped())
	}
	close(rec.gate)
	h.Close()
	if got := int(h.Dropped()) + rec.count(); got != 10 {
		t.Fatalf("delivered+dropped=%d want 10", got)
	}
}

func TestEventsAfterCloseAreDropped(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 1, 4)
	h.Close()
	h.Close()
	h.Hit("Contact", "Get")
	h.GenerationBumpError("k", nil)
	if h.Dropped() != 2 {
		t.Fatalf("dropped=%d want 2", h.Dropped())
	}
	if rec.count() != 0 {
		t.Fatalf("event delivered after Close")
	}
}
