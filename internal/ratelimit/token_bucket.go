package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var (
	ErrBucketNotConfigured = errors.New("rate limiter not configured")
	ErrBucketInvalidInput  = errors.New("rate limiter key, rate and burst are required")
	ErrBucketReply         = errors.New("invalid rate limit script response")
)

// The bucket hash stores milli-tokens so partial refills survive the
// integer reply conversion. Replies are {allowed, milli_tokens_left, retry_ms}.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2]) * 1000
local ttl = tonumber(ARGV[3])

local clock = redis.call("TIME")
local now = clock[1] * 1000 + math.floor(clock[2] / 1000)

local tokens = tonumber(redis.call("HGET", KEYS[1], "mt"))
local last = tonumber(redis.call("HGET", KEYS[1], "at"))
if tokens == nil or last == nil then
  tokens = capacity
else
  local elapsed = math.max(0, now - last)
  tokens = math.min(capacity, tokens + elapsed * rate)
end

local allowed = 0
local retry = 0
if tokens >= 1000 then
  allowed = 1
  tokens = tokens - 1000
else
  retry = math.ceil((1000 - tokens) / rate)
end

redis.call("HSET", KEYS[1], "mt", math.floor(tokens), "at", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, math.floor(tokens), retry}
`

// TokenBucket is a redis-backed token bucket; state lives in one hash per key.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client, script: redis.NewScript(tokenBucketScript)}
}

// Allow takes one token from the bucket at key. rate is tokens per second.
func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	denied := &RateLimitResult{Limit: burst}
	if t == nil || t.client == nil {
		return denied, ErrBucketNotConfigured
	}
	if key == "" || rate <= 0 || burst <= 0 {
		return denied, ErrBucketInvalidInput
	}

	// the script works in milliseconds, so the refill rate is milli-tokens per ms
	reply, err := t.script.Run(ctx, t.client, []string{key},
		rate, burst, defaultBucketTTL(rate, burst).Milliseconds()).Int64Slice()
	if err != nil {
		return denied, err
	}
	if len(reply) != 3 {
		return denied, ErrBucketReply
	}

	return &RateLimitResult{
		Allowed:    reply[0] == 1,
		Limit:      burst,
		Remaining:  int(reply[1] / 1000),
		RetryAfter: time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// defaultBucketTTL keeps an idle bucket around for twice the time it takes to refill.
func defaultBucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	return time.Duration(math.Max(1, math.Ceil(float64(burst)/rate*2))) * time.Second
}
