// Package cache provides the short-TTL response cache for the aggregate
// stats read path. The GET endpoint is by far the hottest route and its
// payload tolerates seconds of staleness.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"petition/internal/platform/redis"
	"petition/internal/signatory/models"
)

const statsKey = "petition:stats"

// Stats caches the assembled GET /signatories payload in Redis. A nil *Stats
// is a valid no-op cache, so callers never branch on whether caching is
// configured.
type Stats struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStats constructs the cache. client may be nil (caching disabled).
func NewStats(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Stats {
	if client == nil {
		return nil
	}
	return &Stats{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached payload, or (nil, false) on miss, disabled cache, or
// any Redis failure. Cache failures are logged, never surfaced: the read path
// falls through to the store.
func (c *Stats) Get(ctx context.Context) (*models.StatsResponse, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		return nil, false
	}

	var stats models.StatsResponse
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable stats cache entry", "error", err)
		return nil, false
	}
	return &stats, true
}

// Set stores the payload with the configured TTL. Best effort.
func (c *Stats) Set(ctx context.Context, stats *models.StatsResponse) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode stats for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, statsKey, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to write stats cache", "error", err)
	}
}

// Invalidate drops the cached payload, called after each accepted signature
// so new signatures appear promptly. Best effort.
func (c *Stats) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to invalidate stats cache", "error", err)
	}
}
