package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/sessionkeeper/internal/model"
)

var _ model.RateLimiter = (*RedisLimiter)(nil)

// RedisLimiter implements a sliding window over a redis sorted set. The
// whole check-and-insert runs as one Lua script, so concurrent requests
// cannot both slip under the limit.
type RedisLimiter struct {
	client       *redis.Client
	maxPerWindow int
	window       time.Duration
	prefix       string

	now func() time.Time
}

func NewRedisLimiter(client *redis.Client, maxPerWindow int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:       client,
		maxPerWindow: maxPerWindow,
		window:       window,
		prefix:       "ratelimit:",
		now:          time.Now,
	}
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	-- exclusive bound: an entry scored exactly at the window start is
	-- still inside the window and must keep counting
	redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. window_start)

	local count = redis.call('ZCARD', key)
	if count < limit then
		local counter = redis.call('INCR', counter_key)
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', counter_key, window_ms)
		return 1
	end
	return 0
`)

func (l *RedisLimiter) Allow(ctx context.Context, clientID, method, path string) (bool, error) {
	now := l.now()
	key := l.prefix + clientID + ":" + method + ":" + path

	allowed, err := slidingWindowScript.Run(ctx, l.client,
		[]string{key, key + ":counter"},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.maxPerWindow,
		l.window.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	return allowed == 1, nil
}
