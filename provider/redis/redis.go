package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/gencache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// incrementScript initializes an absent counter to ARGV[1] and adds ARGV[2]
// in one server-side step. ARGV[3] = "1" drops any TTL (never-remove priority).
var incrementScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  redis.call('SET', KEYS[1], ARGV[1])
end
local v = redis.call('INCRBY', KEYS[1], ARGV[2])
if ARGV[3] == '1' then
  redis.call('PERSIST', KEYS[1])
end
return v
`)

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// Set relies on Redis' own maxmemory policy for default-priority entries;
// pair it with volatile-* eviction so keys without TTL (counters) are kept.
func (p *Redis) Set(ctx context.Context, key string, value []byte, prio pr.Priority, ttl time.Duration) (bool, error) {
	if ttl < 0 || prio == pr.PriorityNeverRemove {
		ttl = 0
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Clear(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

func (p *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := p.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Redis) Increment(ctx context.Context, key string, defaultValue, delta int64, prio pr.Priority) (int64, error) {
	persist := "0"
	if prio == pr.PriorityNeverRemove {
		persist = "1"
	}
	v, err := incrementScript.Run(ctx, p.rdb, []string{key}, defaultValue, delta, persist).Int64()
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
