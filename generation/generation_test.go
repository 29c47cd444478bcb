package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/gencache/provider"
	"github.com/unkn0wn-root/gencache/provider/memory"
)

type brokenProvider struct{ pr.Provider }

var errDown = errors.New("down")

func (brokenProvider) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (brokenProvider) Increment(context.Context, string, int64, int64, pr.Priority) (int64, error) {
	return 0, errDown
}

func TestGetDefaultsToInitial(t *testing.T) {
	m, err := NewManager(memory.New(memory.Config{}))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if g := m.Get(context.Background(), "absent"); g != Initial {
		t.Fatalf("absent counter=%d want %d", g, Initial)
	}
}

func TestProviderErrorsReadAsInitial(t *testing.T) {
	m, _ := NewManager(brokenProvider{})
	ctx := context.Background()
	if g := m.Get(ctx, "k"); g != Initial {
		t.Fatalf("Get under error=%d want %d", g, Initial)
	}
	if _, err := m.Lookup(ctx, "k"); !errors.Is(err, errDown) {
		t.Fatalf("Lookup must surface the error, got %v", err)
	}
	if _, err := m.Increment(ctx, "k"); !errors.Is(err, errDown) {
		t.Fatalf("Increment must surface the error, got %v", err)
	}
}

func TestCorruptCounterSurfaces(t *testing.T) {
	ctx := context.Background()
	p := memory.New(memory.Config{})
	m, _ := NewManager(p)
	_, _ = p.Set(ctx, "k", []byte("nope"), pr.PriorityNeverRemove, 0)
	if _, err := m.Lookup(ctx, "k"); !errors.Is(err, pr.ErrNotCounter) {
		t.Fatalf("expected ErrNotCounter, got %v", err)
	}
}

func TestIncrementMonotonic(t *testing.T) {
	ctx := context.Background()
	m, _ := NewManager(memory.New(memory.Config{}))

	const workers, each = 10, 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			last := int64(0)
			for j := 0; j < each; j++ {
				g, err := m.Increment(ctx, "type")
				if err != nil {
					t.Errorf("Increment: %v", err)
					return
				}
				if g <= last {
					t.Errorf("generation went from %d to %d", last, g)
				}
				last = g
				mu.Lock()
				if seen[g] {
					t.Errorf("generation %d handed out twice", g)
				}
				seen[g] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if g := m.Get(ctx, "type"); g != Initial+workers*each {
		t.Fatalf("final=%d want %d", g, Initial+workers*each)
	}
}

func TestCounterIsPinned(t *testing.T) {
	ctx := context.Background()
	p := memory.New(memory.Config{MaxEntries: 1})
	m, _ := NewManager(p)
	if _, err := m.Increment(ctx, "type"); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	for i := 0; i < 5; i++ {
		_, _ = p.Set(ctx, string(rune('a'+i)), []byte("v"), pr.PriorityDefault, time.Minute)
	}
	if g := m.Get(ctx, "type"); g != 2 {
		t.Fatalf("counter lost under pressure: %d", g)
	}
}

func TestNilProvider(t *testing.T) {
	if _, err := NewManager(nil); !errors.Is(err, ErrNilProvider) {
		t.Fatalf("expected ErrNilProvider, got %v", err)
	}
}

func TestClusters(t *testing.T) {
	ctx := context.Background()
	local := NewLocalCluster()
	if g, _ := local.Current(ctx); g != Initial {
		t.Fatalf("local start=%d", g)
	}
	if g, _ := local.Bump(ctx); g != Initial+1 {
		t.Fatalf("local bump=%d", g)
	}

	p := memory.New(memory.Config{})
	m, _ := NewManager(p)
	a := NewProviderCluster(m, "")
	b := NewProviderCluster(m, DefaultClusterKey)
	if _, err := a.Bump(ctx); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if g, _ := b.Current(ctx); g != Initial+1 {
		t.Fatalf("clusters sharing a provider disagree: %d", g)
	}
}
