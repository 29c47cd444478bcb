package ristretto

import (
	"testing"

	pr "github.com/unkn0wn-root/gencache/provider"
	"github.com/unkn0wn-root/gencache/provider/providertest"
)

func newTestProvider(t *testing.T) pr.Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestContract(t *testing.T) {
	providertest.Contract{New: newTestProvider, HonorsTTL: true}.Test(t)
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for zero config")
	}
}
