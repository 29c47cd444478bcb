package bigcache

import (
	"testing"
	"time"

	pr "github.com/unkn0wn-root/gencache/provider"
	"github.com/unkn0wn-root/gencache/provider/providertest"
)

func TestContract(t *testing.T) {
	providertest.Contract{
		New: func(t *testing.T) pr.Provider {
			p, err := New(Config{LifeWindow: time.Minute, MaxEntrySize: 256})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			return p
		},
	}.Test(t)
}
