package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/gencache/provider"
	"github.com/unkn0wn-root/gencache/provider/providertest"
)

// Set GENCACHE_REDIS_ADDR (e.g. localhost:6379) to run against a live server.
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("GENCACHE_REDIS_ADDR")
	if addr == "" {
		t.Skip("GENCACHE_REDIS_ADDR not set")
	}
	return addr
}

func TestContract(t *testing.T) {
	addr := redisAddr(t)
	providertest.Contract{
		New: func(t *testing.T) pr.Provider {
			rdb := goredis.NewClient(&goredis.Options{Addr: addr})
			if err := rdb.Ping(context.Background()).Err(); err != nil {
				t.Skipf("redis not reachable: %v", err)
			}
			p, err := New(Config{Client: rdb, CloseClient: true})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			return p
		},
		HonorsTTL: true,
	}.Test(t)
}

func TestIncrementPersists(t *testing.T) {
	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: redisAddr(t)})
	p, _ := New(Config{Client: rdb, CloseClient: true})
	defer p.Close(ctx)

	k := "gencache-test/persist"
	defer rdb.Del(ctx, k)
	if err := rdb.Set(ctx, k, "4", 0).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := rdb.Expire(ctx, k, time.Hour).Err(); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n, err := p.Increment(ctx, k, 1, 1, pr.PriorityNeverRemove); err != nil || n != 5 {
		t.Fatalf("Increment=%d err=%v want 5", n, err)
	}
	ttl, err := rdb.TTL(ctx, k).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl >= 0 {
		t.Fatalf("never-remove counter kept a TTL: %v", ttl)
	}
}

func TestNilClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}
