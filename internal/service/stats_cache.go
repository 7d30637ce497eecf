package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	pkgredis "github.com/prohmpiriya/hostel-saas/pkg/redis"
)

const statsCachePrefix = "hostel:stats:"

// setIfVersionScript stores a snapshot only while the hostel's version is the one
// read before computing it, so a write that lands mid-computation wins.
const setIfVersionScript = `
local current = redis.call('GET', KEYS[2])
if (current or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

// StatsCache holds recent stats snapshots per hostel. Failures are treated as misses.
type StatsCache interface {
	Get(ctx context.Context, hostelID string) (*domain.StatsSnapshot, bool)
	// Version is read before computing a snapshot and handed back to Set
	Version(ctx context.Context, hostelID string) int64
	// Set stores snap unless the hostel was invalidated after version was read
	Set(ctx context.Context, snap *domain.StatsSnapshot, version int64)
	Invalidate(ctx context.Context, hostelID string)
}

// NewStatsCache returns a Redis-backed cache, or a no-op one when client is nil or ttl is zero
func NewStatsCache(client *pkgredis.Client, ttl time.Duration, log *logger.Logger) StatsCache {
	if client == nil || ttl <= 0 {
		return NoopStatsCache{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisStatsCache{client: client, ttl: ttl, log: log.Named("stats_cache")}
}

// RedisStatsCache stores snapshots as JSON strings with a TTL
type RedisStatsCache struct {
	client *pkgredis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// keys share a hash tag so the script stays on one cluster slot
func statsKey(hostelID string) string {
	return statsCachePrefix + "{" + hostelID + "}"
}

func statsVersionKey(hostelID string) string {
	return statsKey(hostelID) + ":version"
}

func (c *RedisStatsCache) Get(ctx context.Context, hostelID string) (*domain.StatsSnapshot, bool) {
	raw, err := c.client.Get(ctx, statsKey(hostelID)).Bytes()
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) {
			c.log.WarnContext(ctx, "stats cache read failed", zap.String("hostel_id", hostelID), zap.Error(err))
		}
		return nil, false
	}

	var snap domain.StatsSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.log.WarnContext(ctx, "stats cache entry corrupt", zap.String("hostel_id", hostelID), zap.Error(err))
		return nil, false
	}
	return &snap, true
}

// Version returns -1 when it cannot be read, which no later Set will match
func (c *RedisStatsCache) Version(ctx context.Context, hostelID string) int64 {
	v, err := c.client.Get(ctx, statsVersionKey(hostelID)).Int64()
	switch {
	case errors.Is(err, pkgredis.Nil):
		return 0
	case err != nil:
		c.log.WarnContext(ctx, "stats cache version read failed", zap.String("hostel_id", hostelID), zap.Error(err))
		return -1
	}
	return v
}

func (c *RedisStatsCache) Set(ctx context.Context, snap *domain.StatsSnapshot, version int64) {
	if version < 0 {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	err = c.client.Eval(ctx, setIfVersionScript,
		[]string{statsKey(snap.HostelID), statsVersionKey(snap.HostelID)},
		strconv.FormatInt(version, 10), raw, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		c.log.WarnContext(ctx, "stats cache write failed", zap.String("hostel_id", snap.HostelID), zap.Error(err))
	}
}

// Invalidate bumps the version before dropping the entry
func (c *RedisStatsCache) Invalidate(ctx context.Context, hostelID string) {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, statsVersionKey(hostelID))
	pipe.Del(ctx, statsKey(hostelID))
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.WarnContext(ctx, "stats cache invalidation failed", zap.String("hostel_id", hostelID), zap.Error(err))
	}
}

// NoopStatsCache never stores anything
type NoopStatsCache struct{}

func (NoopStatsCache) Get(context.Context, string) (*domain.StatsSnapshot, bool) { return nil, false }
func (NoopStatsCache) Version(context.Context, string) int64                     { return 0 }
func (NoopStatsCache) Set(context.Context, *domain.StatsSnapshot, int64)         {}
func (NoopStatsCache) Invalidate(context.Context, string)                        {}
