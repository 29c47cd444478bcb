package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/gencache/provider"
	"github.com/unkn0wn-root/gencache/provider/providertest"
)

func TestContract(t *testing.T) {
	providertest.Contract{
		New:       func(*testing.T) pr.Provider { return New(Config{}) },
		HonorsTTL: true,
	}.Test(t)
}

func TestPinnedEntriesSurviveEviction(t *testing.T) {
	ctx := context.Background()
	p := New(Config{MaxEntries: 2})
	defer p.Close(ctx)

	if _, err := p.Increment(ctx, "gen", 1, 1, pr.PriorityNeverRemove); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := p.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), pr.PriorityDefault, 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	raw, ok, _ := p.Get(ctx, "gen")
	if !ok {
		t.Fatalf("pinned counter was evicted")
	}
	if n, _ := pr.ParseCounter(raw); n != 2 {
		t.Fatalf("counter=%d want 2", n)
	}
	if got := p.Len(); got != 3 {
		t.Fatalf("Len=%d want 3 (2 evictable + 1 pinned)", got)
	}
	if _, ok, _ := p.Get(ctx, "k9"); !ok {
		t.Fatalf("most recent write must be present")
	}
}

func TestSweepDropsExpired(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})
	defer p.Close(ctx)

	_, _ = p.Set(ctx, "short", []byte("v"), pr.PriorityDefault, time.Millisecond)
	_, _ = p.Set(ctx, "long", []byte("v"), pr.PriorityDefault, time.Hour)
	time.Sleep(5 * time.Millisecond)
	p.Sweep()
	if got := p.Len(); got != 1 {
		t.Fatalf("Len after sweep=%d want 1", got)
	}
}

func TestCleanupLoopStopsOnClose(t *testing.T) {
	p := New(Config{CleanupInterval: time.Millisecond})
	_, _ = p.Set(context.Background(), "k", []byte("v"), pr.PriorityDefault, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := p.Len(); got != 0 {
		t.Fatalf("background sweep did not run, Len=%d", got)
	}
}

func TestValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})

	in := []byte("abc")
	if _, err := p.Set(ctx, "k", in, pr.PriorityDefault, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	in[0] = 'X'

	out, _, _ := p.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("Set kept the caller's slice: %q", out)
	}
	out[1] = 'Y'

	again, _, _ := p.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("Get exposed the stored slice: %q", again)
	}
}
