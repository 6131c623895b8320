package cache

import (
	"context"
	"sync"
	"time"

	"finance_tracker/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const attemptKeyPrefix = "reveal_attempts:"

// AttemptLimiter counts failures per key inside a fixed window that starts at
// the first failure.
type AttemptLimiter interface {
	// Blocked reports whether the key already used up its failures.
	Blocked(ctx context.Context, key string) bool
	Fail(ctx context.Context, key string)
	Reset(ctx context.Context, key string)
}

// NewAttemptLimiter returns a Redis-backed limiter when rdb is non-nil and an
// in-memory one otherwise. A non-positive max disables limiting.
func NewAttemptLimiter(rdb *redis.Client, max int, window time.Duration) AttemptLimiter {
	if max <= 0 {
		return noLimit{}
	}
	if rdb == nil {
		return NewMemoryAttemptLimiter(max, window, time.Now)
	}
	return &redisAttemptLimiter{rdb: rdb, max: int64(max), window: window}
}

type noLimit struct{}

func (noLimit) Blocked(context.Context, string) bool { return false }
func (noLimit) Fail(context.Context, string)         {}
func (noLimit) Reset(context.Context, string)        {}

type redisAttemptLimiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

func (l *redisAttemptLimiter) Blocked(ctx context.Context, key string) bool {
	n, err := l.rdb.Get(ctx, attemptKeyPrefix+key).Int64()
	if err != nil {
		if err != redis.Nil {
			logger.Get().Warn("attempt limiter read failed", zap.Error(err))
		}
		return false
	}
	return n >= l.max
}

func (l *redisAttemptLimiter) Fail(ctx context.Context, key string) {
	k := attemptKeyPrefix + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		logger.Get().Warn("attempt limiter increment failed", zap.Error(err))
		return
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			logger.Get().Warn("attempt limiter expire failed", zap.Error(err))
		}
	}
}

func (l *redisAttemptLimiter) Reset(ctx context.Context, key string) {
	if err := l.rdb.Del(ctx, attemptKeyPrefix+key).Err(); err != nil {
		logger.Get().Warn("attempt limiter reset failed", zap.Error(err))
	}
}

type attemptWindow struct {
	count   int
	resetAt time.Time
}

// MemoryAttemptLimiter is a process-local AttemptLimiter.
type MemoryAttemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	windows map[string]*attemptWindow
}

func NewMemoryAttemptLimiter(max int, window time.Duration, now func() time.Time) *MemoryAttemptLimiter {
	return &MemoryAttemptLimiter{max: max, window: window, now: now, windows: make(map[string]*attemptWindow)}
}

func (l *MemoryAttemptLimiter) current(key string) *attemptWindow {
	w, ok := l.windows[key]
	if ok && !l.now().Before(w.resetAt) {
		delete(l.windows, key)
		return nil
	}
	return w
}

func (l *MemoryAttemptLimiter) Blocked(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.current(key)
	return w != nil && w.count >= l.max
}

func (l *MemoryAttemptLimiter) Fail(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.current(key)
	if w == nil {
		w = &attemptWindow{resetAt: l.now().Add(l.window)}
		l.windows[key] = w
	}
	w.count++
}

func (l *MemoryAttemptLimiter) Reset(_ context.Context, key string) {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
}
