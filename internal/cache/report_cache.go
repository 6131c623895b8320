// Package cache holds the short-lived state the services keep outside the
// primary store: computed spending reports and failed reveal attempts. Each
// concern has a Redis implementation and an in-process fallback used when
// Redis is not configured.
package cache

import (
	"context"
	"sync"
	"time"

	"finance_tracker/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const reportKeyPrefix = "reports:"

// ReportCache stores serialized reports per owner. A cache failure is never an
// error for the caller; it only turns into a miss.
type ReportCache interface {
	Get(ctx context.Context, owner, field string) ([]byte, bool)
	Put(ctx context.Context, owner, field string, data []byte)
	// Invalidate drops every cached report of the owner.
	Invalidate(ctx context.Context, owner string)
}

// NewReportCache returns a Redis-backed cache when rdb is non-nil and an
// in-memory one otherwise.
func NewReportCache(rdb *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if rdb == nil {
		return NewMemoryReportCache(ttl, time.Now)
	}
	return &redisReportCache{rdb: rdb, ttl: ttl}
}

// redisReportCache stores each report under its own key with its own TTL.
// A per-owner set lists those keys so invalidation can drop them together.
type redisReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func reportKey(owner, field string) string {
	return reportKeyPrefix + owner + ":" + field
}

func reportIndexKey(owner string) string {
	return reportKeyPrefix + owner
}

func (c *redisReportCache) Get(ctx context.Context, owner, field string) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, reportKey(owner, field)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Get().Warn("report cache read failed", zap.String("owner", owner), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *redisReportCache) Put(ctx context.Context, owner, field string, data []byte) {
	key, index := reportKey(owner, field), reportIndexKey(owner)
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, index, key)
	// the index only has to outlive the newest report it lists
	pipe.Expire(ctx, index, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Get().Warn("report cache write failed", zap.String("owner", owner), zap.Error(err))
	}
}

func (c *redisReportCache) Invalidate(ctx context.Context, owner string) {
	index := reportIndexKey(owner)
	keys, err := c.rdb.SMembers(ctx, index).Result()
	if err != nil {
		logger.Get().Warn("report cache invalidation failed", zap.String("owner", owner), zap.Error(err))
		return
	}
	if err := c.rdb.Del(ctx, append(keys, index)...).Err(); err != nil {
		logger.Get().Warn("report cache invalidation failed", zap.String("owner", owner), zap.Error(err))
	}
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryReportCache is a process-local ReportCache. Like the Redis cache,
// every report expires on its own.
type MemoryReportCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]map[string]memoryEntry
}

func NewMemoryReportCache(ttl time.Duration, now func() time.Time) *MemoryReportCache {
	return &MemoryReportCache{ttl: ttl, now: now, entries: make(map[string]map[string]memoryEntry)}
}

func (c *MemoryReportCache) Get(_ context.Context, owner, field string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := c.entries[owner]
	e, ok := fields[field]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(fields, field)
		if len(fields) == 0 {
			delete(c.entries, owner)
		}
		return nil, false
	}
	return e.data, true
}

func (c *MemoryReportCache) Put(_ context.Context, owner, field string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields, ok := c.entries[owner]
	if !ok {
		fields = make(map[string]memoryEntry)
		c.entries[owner] = fields
	}
	fields[field] = memoryEntry{data: data, expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryReportCache) Invalidate(_ context.Context, owner string) {
	c.mu.Lock()
	delete(c.entries, owner)
	c.mu.Unlock()
}
