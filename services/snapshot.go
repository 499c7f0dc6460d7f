package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"event-portal/models"
	"event-portal/utils"
)

// SnapshotCache holds the joined user/payment/ticket snapshot that
// backs the dashboard and ticket views. The record store stays
// authoritative; entries are invalidated by every mutation that
// touches the user and expire on their own otherwise. A circuit
// breaker keeps a dead Redis from stalling request handling - cache
// misses fall through to the store.
type SnapshotCache struct {
	redis   *redis.Client
	breaker *utils.CircuitBreaker
	ttl     time.Duration
}

func NewSnapshotCache(redisClient *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		redis:   redisClient,
		breaker: utils.NewCircuitBreaker("snapshot-cache"),
		ttl:     ttl,
	}
}

func snapshotKey(userID string) string {
	return "portal:snapshot:" + userID
}

func (c *SnapshotCache) Get(ctx context.Context, userID string) (*models.UserWithDetails, bool) {
	var raw []byte
	miss := false

	err := c.breaker.Execute(func() error {
		b, err := c.redis.Get(ctx, snapshotKey(userID)).Bytes()
		if err == redis.Nil {
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		raw = b
		return nil
	})
	if err != nil || miss {
		return nil, false
	}

	var detail models.UserWithDetails
	if err := json.Unmarshal(raw, &detail); err != nil {
		// stale format from an older build; drop it
		c.Invalidate(ctx, userID)
		return nil, false
	}
	return &detail, true
}

func (c *SnapshotCache) Set(ctx context.Context, detail *models.UserWithDetails) {
	data, err := json.Marshal(detail)
	if err != nil {
		return
	}
	if err := c.breaker.Execute(func() error {
		return c.redis.Set(ctx, snapshotKey(detail.ID), data, c.ttl).Err()
	}); err != nil {
		slog.Debug("snapshot cache write skipped", "user", detail.ID, "error", err)
	}
}

func (c *SnapshotCache) Invalidate(ctx context.Context, userID string) {
	if err := c.breaker.Execute(func() error {
		return c.redis.Del(ctx, snapshotKey(userID)).Err()
	}); err != nil {
		slog.Warn("snapshot invalidation failed", "user", userID, "error", err)
	}
}
