package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medboard_backend/internal/taxonomy"

	"github.com/go-redis/redis/v8"
)

// AnalyticsCacheRepository caches per-user category summaries in Redis.
// With a nil client every lookup misses and writes are dropped.
type AnalyticsCacheRepository struct {
	Redis *redis.Client
	TTL   time.Duration
	ctx   context.Context
}

func NewAnalyticsCacheRepository(rdb *redis.Client, ttl time.Duration) *AnalyticsCacheRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnalyticsCacheRepository{
		Redis: rdb,
		TTL:   ttl,
		ctx:   context.Background(),
	}
}

func summaryKey(userID uint, version int64, dim taxonomy.Dimension) string {
	return fmt.Sprintf("analytics:summary:%d:v%d:%s", userID, version, dim)
}

func versionKey(userID uint) string {
	return fmt.Sprintf("analytics:summary:%d:version", userID)
}

// SummaryVersion returns the user's current cache generation. Summaries are
// stored under it, so a summary computed before an invalidation can never be
// read back after it.
func (r *AnalyticsCacheRepository) SummaryVersion(userID uint) (int64, error) {
	if r.Redis == nil {
		return 0, nil
	}

	version, err := r.Redis.Get(r.ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// GetSummary returns the summary cached for version, or ok=false on a miss or
// any Redis error.
func (r *AnalyticsCacheRepository) GetSummary(userID uint, version int64, dim taxonomy.Dimension) ([]taxonomy.CategoryStat, bool) {
	if r.Redis == nil {
		return nil, false
	}

	raw, err := r.Redis.Get(r.ctx, summaryKey(userID, version, dim)).Bytes()
	if err != nil {
		return nil, false
	}

	var stats []taxonomy.CategoryStat
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return stats, true
}

func (r *AnalyticsCacheRepository) SetSummary(userID uint, version int64, dim taxonomy.Dimension, stats []taxonomy.CategoryStat) error {
	if r.Redis == nil {
		return nil
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.Redis.Set(r.ctx, summaryKey(userID, version, dim), raw, r.TTL).Err()
}

// InvalidateUser moves the user to a new cache generation. Summaries of older
// generations expire with their TTL.
func (r *AnalyticsCacheRepository) InvalidateUser(userID uint) error {
	if r.Redis == nil {
		return nil
	}
	return r.Redis.Incr(r.ctx, versionKey(userID)).Err()
}
