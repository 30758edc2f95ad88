package memory

import (
	"context"
	"time"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/cache"
)

// MemorySnapshotRepository keeps the latest snapshot per session in a
// TTL cache. A session that stops publishing ages out on its own, so a
// crashed sampler never leaves a stale snapshot behind forever.
type MemorySnapshotRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemorySnapshotRepository creates an in-memory snapshot store.
// A non-positive ttl falls back to a 24h default.
func NewMemorySnapshotRepository(ttl time.Duration) *MemorySnapshotRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemorySnapshotRepository{
		cache: cache.NewCache(ttl),
		ttl:   ttl,
	}
}

var _ ports.SnapshotRepository = (*MemorySnapshotRepository)(nil)

func (r *MemorySnapshotRepository) key(id domain.SessionID) string {
	return "snapshot:" + string(id)
}

func (r *MemorySnapshotRepository) Save(ctx context.Context, stats domain.VideoStats) error {
	r.cache.SetWithTTL(r.key(stats.SessionID), stats, r.ttl)
	return nil
}

func (r *MemorySnapshotRepository) Latest(ctx context.Context, id domain.SessionID) (domain.VideoStats, error) {
	value, found := r.cache.Get(r.key(id))
	if !found {
		return domain.VideoStats{}, domain.ErrSnapshotNotFound
	}
	stats, ok := value.(domain.VideoStats)
	if !ok {
		return domain.VideoStats{}, domain.ErrSnapshotNotFound
	}
	return stats, nil
}

func (r *MemorySnapshotRepository) Delete(ctx context.Context, id domain.SessionID) error {
	r.cache.Delete(r.key(id))
	return nil
}

// Close stops the cache cleanup goroutine.
func (r *MemorySnapshotRepository) Close() {
	r.cache.Stop()
}
