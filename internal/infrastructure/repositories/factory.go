package repositories

import (
	"context"
	"time"

	"playhud/internal/core/ports"
	"playhud/internal/infrastructure/reliability"
	"playhud/internal/infrastructure/repositories/memory"
	redisrepo "playhud/internal/infrastructure/repositories/redis"
	"playhud/pkg/circuitbreaker"
	"playhud/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	cfg         *config.Config
	logger      *zap.SugaredLogger

	memRepo     *memory.MemorySnapshotRepository
	batchedRepo *redisrepo.BatchedSnapshotRepository
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		cfg:      cfg,
		logger:   logger,
	}

	// Try to connect to Redis if enabled
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

// CreateSnapshotRepository creates the snapshot store. The Redis variant
// is wrapped in a circuit breaker so a dying Redis degrades to dropped
// writes rather than blocked samplers.
func (f *RepositoryFactory) CreateSnapshotRepository() ports.SnapshotRepository {
	if f.useRedis && f.redisClient != nil {
		base := redisrepo.NewRedisSnapshotRepository(f.redisClient, f.cfg.Sampler.SnapshotTTL)
		f.batchedRepo = redisrepo.NewBatchedSnapshotRepository(base, 64, 250*time.Millisecond)
		return reliability.NewSnapshotRepositoryWrapper(f.batchedRepo, circuitbreaker.DefaultConfig(), f.logger)
	}

	f.memRepo = memory.NewMemorySnapshotRepository(f.cfg.Sampler.SnapshotTTL)
	return f.memRepo
}

// RedisClient exposes the shared client for components that need raw
// Redis access (snapshot pub/sub fanout). Nil when Redis is not in use.
func (f *RepositoryFactory) RedisClient() *redis.Client {
	return f.redisClient
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.memRepo != nil {
		f.memRepo.Close()
	}
	if f.batchedRepo != nil {
		f.batchedRepo.Stop()
	}
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
