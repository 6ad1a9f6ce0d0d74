package property

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ardhi/internal/platform/redis"
	"ardhi/pkg/domain"
)

const statsKeyPrefix = "ardhi:stats:"

// StatsCache memoizes portfolio stats in Redis with a short TTL. All
// methods are safe on a nil receiver or a nil client, so wiring stays
// unconditional and only the lookups degrade to misses.
//
// Cache failures are logged and treated as misses; the store remains the
// source of truth.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStatsCache constructs a cache over an optional Redis client.
func NewStatsCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *StatsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached stats for a user, if present.
func (c *StatsCache) Get(ctx context.Context, userID domain.UserID) (Stats, bool) {
	if c == nil || c.client == nil {
		return Stats{}, false
	}
	raw, err := c.client.Get(ctx, statsKeyPrefix+userID.String()).Bytes()
	if err != nil {
		return Stats{}, false
	}
	var st Stats
	if err := json.Unmarshal(raw, &st); err != nil {
		c.logger.WarnContext(ctx, "corrupt stats cache entry", "user_id", userID.String(), "error", err)
		return Stats{}, false
	}
	return st, true
}

// Set stores stats under the configured TTL.
func (c *StatsCache) Set(ctx context.Context, userID domain.UserID, st Stats) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKeyPrefix+userID.String(), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "stats cache write failed", "user_id", userID.String(), "error", err)
	}
}

// Invalidate drops the cached stats after any mutation touching the
// user's portfolio.
func (c *StatsCache) Invalidate(ctx context.Context, userID domain.UserID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, statsKeyPrefix+userID.String()).Err(); err != nil {
		c.logger.WarnContext(ctx, "stats cache invalidation failed", "user_id", userID.String(), "error", err)
	}
}
