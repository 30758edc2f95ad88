package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/retry"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotRepository stores the latest snapshot per session as a
// JSON blob with a TTL, plus a set indexing known session IDs. Saves run
// at 1 Hz per session, so transient Redis hiccups are retried briefly
// rather than surfaced to the sampler.
type RedisSnapshotRepository struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	retryCfg retry.Config
}

var _ ports.SnapshotRepository = (*RedisSnapshotRepository)(nil)

func NewRedisSnapshotRepository(client *redis.Client, ttl time.Duration) *RedisSnapshotRepository {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 2
	retryCfg.InitialDelay = 50 * time.Millisecond
	retryCfg.MaxDelay = 200 * time.Millisecond
	retryCfg.ShouldRetry = func(err error) bool { return err != redis.Nil }

	return &RedisSnapshotRepository{
		client:   client,
		prefix:   "playhud:snapshot:",
		ttl:      ttl,
		retryCfg: retryCfg,
	}
}

func (r *RedisSnapshotRepository) snapshotKey(id domain.SessionID) string {
	return r.prefix + string(id)
}

func (r *RedisSnapshotRepository) sessionsKey() string {
	return r.prefix + "sessions"
}

func (r *RedisSnapshotRepository) Save(ctx context.Context, stats domain.VideoStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return retry.Retry(ctx, r.retryCfg, func() error {
		pipe := r.client.TxPipeline()
		pipe.Set(ctx, r.snapshotKey(stats.SessionID), data, r.ttl)
		pipe.SAdd(ctx, r.sessionsKey(), string(stats.SessionID))
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to save snapshot in Redis: %w", err)
		}
		return nil
	})
}

func (r *RedisSnapshotRepository) Latest(ctx context.Context, id domain.SessionID) (domain.VideoStats, error) {
	data, err := r.client.Get(ctx, r.snapshotKey(id)).Result()
	if err == redis.Nil {
		return domain.VideoStats{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.VideoStats{}, fmt.Errorf("failed to get snapshot from Redis: %w", err)
	}

	var stats domain.VideoStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return domain.VideoStats{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return stats, nil
}

func (r *RedisSnapshotRepository) Delete(ctx context.Context, id domain.SessionID) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.snapshotKey(id))
	pipe.SRem(ctx, r.sessionsKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete snapshot from Redis: %w", err)
	}
	return nil
}

// Sessions lists the session IDs with a stored snapshot. Entries whose
// snapshot key has expired are pruned from the index lazily.
func (r *RedisSnapshotRepository) Sessions(ctx context.Context) ([]domain.SessionID, error) {
	members, err := r.client.SMembers(ctx, r.sessionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions from Redis: %w", err)
	}

	var ids []domain.SessionID
	for _, member := range members {
		id := domain.SessionID(member)
		exists, err := r.client.Exists(ctx, r.snapshotKey(id)).Result()
		if err != nil {
			continue
		}
		if exists == 0 {
			r.client.SRem(ctx, r.sessionsKey(), member)
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}
