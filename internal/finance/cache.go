package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"novahub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SummaryCache keeps dashboard summaries in redis for a short TTL so the
// dashboard endpoint does not recompute aggregates on every request.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewSummaryCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl, log: log.WithModule("finance.cache")}
}

// NewRedisClient builds a redis client from a connection URL.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func summaryKey(projectID uuid.UUID) string {
	return "finance:summary:" + projectID.String()
}

// Get returns the cached summary, or (nil, nil) on a miss. Cache errors
// are logged and treated as misses.
func (c *SummaryCache) Get(ctx context.Context, projectID uuid.UUID) (*Summary, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, summaryKey(projectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		c.log.Warn("summary cache read failed", "error", err)
		return nil, nil
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.Warn("summary cache entry corrupt", "error", err)
		return nil, nil
	}
	return &s, nil
}

func (c *SummaryCache) Set(ctx context.Context, projectID uuid.UUID, s Summary) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, summaryKey(projectID), data, c.ttl).Err(); err != nil {
		c.log.Warn("summary cache write failed", "error", err)
	}
}

// Invalidate drops the cached summary after a sync changes the data.
func (c *SummaryCache) Invalidate(ctx context.Context, projectID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, summaryKey(projectID)).Err(); err != nil {
		c.log.Warn("summary cache invalidation failed", "error", err)
	}
}
