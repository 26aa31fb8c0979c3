package redisstore

import (
	"context"
	"sync"

	redis "github.com/redis/go-redis/v9"
)

// Client abstracts the minimal surface the store needs from a Redis client.
// Every store operation is a single Lua script, so Eval is the only data call.
type Client interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
	Ping(ctx context.Context) error
	Close() error
}

// GoRedisClient implements Client with github.com/redis/go-redis/v9.
// Scripts run through EVALSHA and fall back to EVAL on a cache miss.
type GoRedisClient struct {
	c       *redis.Client
	scripts sync.Map // script source -> *redis.Script
}

// NewGoRedisClient connects lazily to addr ("127.0.0.1:6379") using logical database db.
func NewGoRedisClient(addr string, db int) *GoRedisClient {
	return &GoRedisClient{c: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

func (g *GoRedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	s, ok := g.scripts.Load(script)
	if !ok {
		s, _ = g.scripts.LoadOrStore(script, redis.NewScript(script))
	}
	return s.(*redis.Script).Run(ctx, g.c, keys, args...).Result()
}

func (g *GoRedisClient) Ping(ctx context.Context) error {
	return g.c.Ping(ctx).Err()
}

func (g *GoRedisClient) Close() error {
	return g.c.Close()
}
