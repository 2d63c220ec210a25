package persistence

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/service"
)

const statusKeyPrefix = "sla:status:"

// StatusCache is the Redis-backed live-status cache. Entries expire after
// the client poll freshness window; everything here is best-effort and a
// cache failure only costs a recomputation.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatusCache builds the cache. Returns nil when Redis is not configured
// so callers can wire a cacheless service.
func NewStatusCache(r *Redis, ttl time.Duration, logger *zap.Logger) *StatusCache {
	if r == nil || r.Client == nil || ttl <= 0 {
		return nil
	}
	return &StatusCache{client: r.Client, ttl: ttl, logger: logger}
}

var _ service.StatusCache = (*StatusCache)(nil)

// GetStatus returns the cached response for a ticket, if still fresh.
func (c *StatusCache) GetStatus(ctx context.Context, ticketID int64) (*service.TicketSLAStatus, bool) {
	raw, err := c.client.Get(ctx, statusKey(ticketID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("status cache read failed", zap.Int64("chamado_id", ticketID), zap.Error(err))
		}
		return nil, false
	}
	var status service.TicketSLAStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		c.logger.Warn("status cache entry corrupt", zap.Int64("chamado_id", ticketID), zap.Error(err))
		return nil, false
	}
	return &status, true
}

// SetStatus stores a freshly computed response with the freshness TTL.
func (c *StatusCache) SetStatus(ctx context.Context, ticketID int64, status *service.TicketSLAStatus) {
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusKey(ticketID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("status cache write failed", zap.Int64("chamado_id", ticketID), zap.Error(err))
	}
}

// InvalidateTicket drops one ticket's cached status.
func (c *StatusCache) InvalidateTicket(ctx context.Context, ticketID int64) {
	if err := c.client.Del(ctx, statusKey(ticketID)).Err(); err != nil {
		c.logger.Warn("status cache invalidation failed", zap.Int64("chamado_id", ticketID), zap.Error(err))
	}
}

// InvalidateAll drops every cached status, e.g. after a batch recalculation.
func (c *StatusCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, statusKeyPrefix+"*", 0).Iterator()
	keys := make([]string, 0, 128)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("status cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("status cache flush failed", zap.Error(err))
	}
}

func statusKey(ticketID int64) string {
	return statusKeyPrefix + strconv.FormatInt(ticketID, 10)
}
