package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

const bannerStatsPrefix = "banner:stats:"

// BannerCounter buffers banner counter increments in one redis hash per
// banner (field = counter column) until they are drained into the database.
type BannerCounter interface {
	Incr(ctx context.Context, bannerID uuid.UUID, column string) error
	// Drain atomically reads and clears every buffered hash.
	Drain(ctx context.Context) (map[uuid.UUID]map[string]int64, error)
	// Restore adds drained deltas back so a later Drain picks them up again.
	Restore(ctx context.Context, bannerID uuid.UUID, deltas map[string]int64) error
}

type bannerCounter struct {
	rdb *goredis.Client
	log *logger.Logger
}

func NewBannerCounter(rdb *goredis.Client, log *logger.Logger) BannerCounter {
	return &bannerCounter{rdb: rdb, log: log.With("client", "RedisBannerCounter")}
}

func bannerKey(id uuid.UUID) string { return bannerStatsPrefix + id.String() }

func (c *bannerCounter) Incr(ctx context.Context, bannerID uuid.UUID, column string) error {
	return c.rdb.HIncrBy(ctx, bannerKey(bannerID), column, 1).Err()
}

func (c *bannerCounter) Drain(ctx context.Context) (map[uuid.UUID]map[string]int64, error) {
	out := map[uuid.UUID]map[string]int64{}
	iter := c.rdb.Scan(ctx, 0, bannerStatsPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := uuid.Parse(strings.TrimPrefix(key, bannerStatsPrefix))
		if err != nil {
			c.log.Warn("Skipping malformed banner stats key", "key", key)
			continue
		}

		var fields *goredis.MapStringStringCmd
		if _, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			fields = pipe.HGetAll(ctx, key)
			pipe.Del(ctx, key)
			return nil
		}); err != nil {
			return out, fmt.Errorf("drain %s: %w", key, err)
		}

		deltas := map[string]int64{}
		for col, raw := range fields.Val() {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n == 0 {
				continue
			}
			deltas[col] = n
		}
		if len(deltas) > 0 {
			out[id] = deltas
		}
	}
	if err := iter.Err(); err != nil {
		return out, fmt.Errorf("scan banner stats: %w", err)
	}
	return out, nil
}

func (c *bannerCounter) Restore(ctx context.Context, bannerID uuid.UUID, deltas map[string]int64) error {
	if len(deltas) == 0 {
		return nil
	}
	key := bannerKey(bannerID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for col, n := range deltas {
			pipe.HIncrBy(ctx, key, col, n)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore %s: %w", key, err)
	}
	return nil
}
