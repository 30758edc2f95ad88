package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/batch"

	"github.com/redis/go-redis/v9"
)

// RedisOperation is one batched Redis write.
type RedisOperation struct {
	Type   string // "set", "sadd", "srem", "del"
	Key    string
	Value  interface{}
	TTL    time.Duration
	client *redis.Client
}

// Execute executes a single Redis operation outside a batch.
func (op *RedisOperation) Execute(ctx context.Context) error {
	switch op.Type {
	case "set":
		data, ok := op.Value.([]byte)
		if !ok {
			return fmt.Errorf("invalid value type for set operation")
		}
		return op.client.Set(ctx, op.Key, data, op.TTL).Err()
	case "sadd":
		member, ok := op.Value.(string)
		if !ok {
			return fmt.Errorf("invalid value type for sadd operation")
		}
		return op.client.SAdd(ctx, op.Key, member).Err()
	case "srem":
		member, ok := op.Value.(string)
		if !ok {
			return fmt.Errorf("invalid value type for srem operation")
		}
		return op.client.SRem(ctx, op.Key, member).Err()
	case "del":
		return op.client.Del(ctx, op.Key).Err()
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

// RedisBatchProcessor executes a batch of Redis writes in one pipeline.
type RedisBatchProcessor struct {
	client *redis.Client
}

func (p *RedisBatchProcessor) ProcessBatch(ctx context.Context, operations []batch.Operation) error {
	if len(operations) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()

	for _, op := range operations {
		redisOp, ok := op.(*RedisOperation)
		if !ok {
			continue
		}
		switch redisOp.Type {
		case "set":
			if data, ok := redisOp.Value.([]byte); ok {
				pipe.Set(ctx, redisOp.Key, data, redisOp.TTL)
			}
		case "sadd":
			if member, ok := redisOp.Value.(string); ok {
				pipe.SAdd(ctx, redisOp.Key, member)
			}
		case "srem":
			if member, ok := redisOp.Value.(string); ok {
				pipe.SRem(ctx, redisOp.Key, member)
			}
		case "del":
			pipe.Del(ctx, redisOp.Key)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// BatchedSnapshotRepository coalesces snapshot writes across sessions
// into pipelined batches. With one save per session per second, many
// concurrent sessions would otherwise issue one round trip each; the
// batcher turns a tick's worth of saves into a single pipeline.
//
// Reads flush pending writes first, so Latest never lags a completed
// Save by more than the flush itself.
type BatchedSnapshotRepository struct {
	baseRepo *RedisSnapshotRepository
	batcher  *batch.Batcher
}

var _ ports.SnapshotRepository = (*BatchedSnapshotRepository)(nil)

func NewBatchedSnapshotRepository(
	baseRepo *RedisSnapshotRepository,
	batchSize int,
	batchInterval time.Duration,
) *BatchedSnapshotRepository {
	processor := &RedisBatchProcessor{client: baseRepo.client}

	return &BatchedSnapshotRepository{
		baseRepo: baseRepo,
		batcher:  batch.NewBatcher(batchSize, batchInterval, processor),
	}
}

// Save enqueues the snapshot write and the session index update.
func (r *BatchedSnapshotRepository) Save(ctx context.Context, stats domain.VideoStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.batcher.Add(&RedisOperation{
		Type:   "set",
		Key:    r.baseRepo.snapshotKey(stats.SessionID),
		Value:  data,
		TTL:    r.baseRepo.ttl,
		client: r.baseRepo.client,
	}); err != nil {
		return err
	}

	return r.batcher.Add(&RedisOperation{
		Type:   "sadd",
		Key:    r.baseRepo.sessionsKey(),
		Value:  string(stats.SessionID),
		client: r.baseRepo.client,
	})
}

// Latest flushes pending writes and reads through to Redis.
func (r *BatchedSnapshotRepository) Latest(ctx context.Context, id domain.SessionID) (domain.VideoStats, error) {
	if err := r.batcher.Flush(ctx); err != nil {
		return domain.VideoStats{}, fmt.Errorf("failed to flush pending snapshots: %w", err)
	}
	return r.baseRepo.Latest(ctx, id)
}

// Delete flushes pending writes first so a queued save cannot land after
// the removal, then deletes immediately.
func (r *BatchedSnapshotRepository) Delete(ctx context.Context, id domain.SessionID) error {
	if err := r.batcher.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush pending snapshots: %w", err)
	}
	return r.baseRepo.Delete(ctx, id)
}

// Sessions flushes pending writes and lists indexed session IDs.
func (r *BatchedSnapshotRepository) Sessions(ctx context.Context) ([]domain.SessionID, error) {
	if err := r.batcher.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush pending snapshots: %w", err)
	}
	return r.baseRepo.Sessions(ctx)
}

// Flush forces pending writes out.
func (r *BatchedSnapshotRepository) Flush(ctx context.Context) error {
	return r.batcher.Flush(ctx)
}

// Stop stops the batcher, flushing remaining writes.
func (r *BatchedSnapshotRepository) Stop() {
	r.batcher.Stop()
}
