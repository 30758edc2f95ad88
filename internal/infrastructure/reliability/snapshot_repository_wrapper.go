package reliability

import (
	"context"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// SnapshotRepositoryWrapper guards a snapshot repository with a circuit
// breaker. When the backing store misbehaves, writes are shed instead of
// stacking up behind a dead connection; the sampler publishes a fresh
// snapshot every second anyway, so dropped saves heal on their own.
type SnapshotRepositoryWrapper struct {
	repo    ports.SnapshotRepository
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewSnapshotRepositoryWrapper(
	repo ports.SnapshotRepository,
	cbConfig circuitbreaker.Config,
	logger *zap.SugaredLogger,
) *SnapshotRepositoryWrapper {
	wrapper := &SnapshotRepositoryWrapper{
		repo:    repo,
		breaker: circuitbreaker.New(cbConfig),
		logger:  logger,
	}

	wrapper.breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Infow("snapshot store circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return wrapper
}

var _ ports.SnapshotRepository = (*SnapshotRepositoryWrapper)(nil)

func (w *SnapshotRepositoryWrapper) Save(ctx context.Context, stats domain.VideoStats) error {
	return w.breaker.Execute(ctx, func() error {
		return w.repo.Save(ctx, stats)
	})
}

func (w *SnapshotRepositoryWrapper) Latest(ctx context.Context, id domain.SessionID) (domain.VideoStats, error) {
	var stats domain.VideoStats
	err := w.breaker.Execute(ctx, func() error {
		var innerErr error
		stats, innerErr = w.repo.Latest(ctx, id)
		// A missing snapshot is an answer, not a store failure.
		if innerErr == domain.ErrSnapshotNotFound {
			stats = domain.VideoStats{}
			return nil
		}
		return innerErr
	})
	if err != nil {
		return domain.VideoStats{}, err
	}
	if stats.SessionID == "" {
		return domain.VideoStats{}, domain.ErrSnapshotNotFound
	}
	return stats, nil
}

func (w *SnapshotRepositoryWrapper) Delete(ctx context.Context, id domain.SessionID) error {
	return w.breaker.Execute(ctx, func() error {
		return w.repo.Delete(ctx, id)
	})
}
