package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/backoffice/internal/config"
	"go.uber.org/zap"
)

const (
	keyLoginClient  = "auth:login:ip:%s"
	keyLoginAccount = "auth:login:lock:%s"
)

// LoginLimiter throttles login attempts per client address and serializes
// attempts against the same account. A nil or disabled limiter allows everything.
type LoginLimiter struct {
	enabled bool
	log     *zap.Logger

	bucket *TokenBucket
	locker *Locker

	rate    float64
	burst   int
	lockTTL time.Duration
}

func NewLoginLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) (*LoginLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled || client == nil {
		return &LoginLimiter{}, nil
	}
	if limitCfg.LoginRate <= 0 || limitCfg.LoginBurst <= 0 {
		return nil, fmt.Errorf("login rate limit must be positive, got rate=%v burst=%d", limitCfg.LoginRate, limitCfg.LoginBurst)
	}

	return &LoginLimiter{
		enabled: true,
		log:     log.Named("ratelimit.login"),
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    limitCfg.LoginRate,
		burst:   limitCfg.LoginBurst,
		lockTTL: 5 * time.Second,
	}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowClient consumes one token for clientIP. Redis failures fail open.
func (l *LoginLimiter) AllowClient(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyLoginClient, strings.TrimSpace(clientIP)), l.rate, l.burst)
	if err != nil {
		l.log.Warn("login rate limit unavailable", zap.Error(err))
		return &RateLimitResult{Allowed: true}, nil
	}
	return res, nil
}

// LockAccount holds a short lock so concurrent guesses for one account run one at a time.
// The returned release func is always safe to call.
func (l *LoginLimiter) LockAccount(ctx context.Context, account string) (func(), bool) {
	if !l.Enabled() {
		return func() {}, true
	}
	key := fmt.Sprintf(keyLoginAccount, strings.ToLower(strings.TrimSpace(account)))
	token, ok, err := l.locker.TryLock(ctx, key, l.lockTTL)
	if err != nil {
		l.log.Warn("login lock unavailable", zap.Error(err))
		return func() {}, true
	}
	if !ok {
		return func() {}, false
	}
	return func() {
		if err := l.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			l.log.Warn("release login lock", zap.Error(err))
		}
	}, true
}
