// Package providertest is a behavioral contract every provider.Provider must
// satisfy. Backend packages run it from their own tests:
//
//	func TestContract(t *testing.T) {
//	    providertest.Contract{New: func(t *testing.T) pr.Provider { return memory.New(memory.Config{}) }}.Test(t)
//	}
package providertest

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/gencache/provider"
)

type Contract struct {
	// New returns a fresh provider. It is closed when the subtest ends.
	New func(t *testing.T) pr.Provider
	// HonorsTTL enables the expiry check for PriorityDefault entries.
	HonorsTTL bool
}

func (c Contract) Test(t *testing.T) {
	t.Run("GetMissing", c.getMissing)
	t.Run("SetGetRoundTrip", c.setGet)
	t.Run("ClearAndExists", c.clearExists)
	t.Run("IncrementFromDefault", c.incrementDefault)
	t.Run("IncrementNonCounter", c.incrementNonCounter)
	t.Run("IncrementConcurrent", c.incrementConcurrent)
	t.Run("NeverRemoveIgnoresTTL", c.neverRemoveTTL)
	if c.HonorsTTL {
		t.Run("DefaultExpires", c.defaultExpires)
	}
}

func (c Contract) subject(t *testing.T) pr.Provider {
	t.Helper()
	p := c.New(t)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

// key is unique per subtest so shared backends (Redis) don't collide.
func key(t *testing.T, suffix string) string {
	return "providertest/" + strings.ReplaceAll(t.Name(), "/", ":") + "/" + suffix
}

func (c Contract) getMissing(t *testing.T) {
	p := c.subject(t)
	v, ok, err := p.Get(context.Background(), key(t, "absent"))
	if err != nil || ok || v != nil {
		t.Fatalf("Get absent: v=%q ok=%v err=%v", v, ok, err)
	}
}

func (c Contract) setGet(t *testing.T) {
	ctx := context.Background()
	p := c.subject(t)
	k := key(t, "k")
	want := []byte{0, 1, 2, 'x', 0xff}

	ok, err := p.Set(ctx, k, want, pr.PriorityDefault, time.Minute)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !ok {
		t.Skip("backend declined the write")
	}
	got, ok, err := p.Get(ctx, k)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Get=%x want %x", got, want)
	}
}

func (c Contract) clearExists(t *testing.T) {
	ctx := context.Background()
	p := c.subject(t)
	k := key(t, "k")

	if err := p.Clear(ctx, k); err != nil {
		t.Fatalf("Clear absent key: %v", err)
	}
	if ok, _ := p.Set(ctx, k, []byte("v"), pr.PriorityDefault, 0); !ok {
		t.Skip("backend declined the write")
	}
	if ok, err := p.Exists(ctx, k); err != nil || !ok {
		t.Fatalf("Exists after Set: ok=%v err=%v", ok, err)
	}
	if err := p.Clear(ctx, k); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if ok, err := p.Exists(ctx, k); err != nil || ok {
		t.Fatalf("Exists after Clear: ok=%v err=%v", ok, err)
	}

	// pinned entries clear the same way
	if _, err := p.Set(ctx, k, []byte("v"), pr.PriorityNeverRemove, 0); err != nil {
		t.Fatalf("Set pinned: %v", err)
	}
	if err := p.Clear(ctx, k); err != nil {
		t.Fatalf("Clear pinned: %v", err)
	}
	if _, ok, _ := p.Get(ctx, k); ok {
		t.Fatalf("pinned entry survived Clear")
	}
}

func (c Contract) incrementDefault(t *testing.T) {
	ctx := context.Background()
	p := c.subject(t)
	k := key(t, "ctr")

	n, err := p.Increment(ctx, k, 1, 1, pr.PriorityNeverRemove)
	if err != nil || n != 2 {
		t.Fatalf("first Increment=%d err=%v want 2", n, err)
	}
	n, err = p.Increment(ctx, k, 1, 5, pr.PriorityNeverRemove)
	if err != nil || n != 7 {
		t.Fatalf("second Increment=%d err=%v want 7", n, err)
	}
	raw, ok, err := p.Get(ctx, k)
	if err != nil || !ok {
		t.Fatalf("Get counter: ok=%v err=%v", ok, err)
	}
	if v, err := pr.ParseCounter(raw); err != nil || v != 7 {
		t.Fatalf("stored counter=%q (%v) want 7", raw, err)
	}
}

func (c Contract) incrementNonCounter(t *testing.T) {
	ctx := context.Background()
	p := c.subject(t)
	k := key(t, "text")
	if _, err := p.Set(ctx, k, []byte("hello"), pr.PriorityNeverRemove, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := p.Increment(ctx, k, 1, 1, pr.PriorityNeverRemove); err == nil {
		t.Fatalf("Increment on a non-counter must fail")
	}
}

func (c Contract) incrementConcurrent(t *testing.T) {
	ctx := context.Background()
	p := c.subject(t)
	k := key(t, "ctr")

	const workers, each = 8, 25
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				if _, err := p.Increment(ctx, k, 1, 1, pr.PriorityNeverRemove); err != nil {
					t.Errorf("Increment: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	raw, _, err := p.Get(ctx, k)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v, _ := pr.ParseCounter(raw); v != 1+workers*each {
		t.Fatalf("counter=%d want %d", v, 1+workers*each)
	}
}

func (c Contract) neverRemoveTTL(t *testing.T) {
	ctx := context.Background()
	p := c.subject(t)
	k := key(t, "pinned")
	if _, err := p.Set(ctx, k, []byte("v"), pr.PriorityNeverRemove, 5*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok, err := p.Get(ctx, k); err != nil || !ok {
		t.Fatalf("pinned entry expired: ok=%v err=%v", ok, err)
	}
}

func (c Contract) defaultExpires(t *testing.T) {
	ctx := context.Background()
	p := c.subject(t)
	k := key(t, "ttl")
	if ok, _ := p.Set(ctx, k, []byte("v"), pr.PriorityDefault, 20*time.Millisecond); !ok {
		t.Skip("backend declined the write")
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok, _ := p.Get(ctx, k); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("entry with ttl did not expire")
}
