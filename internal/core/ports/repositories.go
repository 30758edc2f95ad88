package ports

import (
	"context"

	"playhud/internal/core/domain"
)

// SnapshotRepository persists the latest telemetry snapshot per session.
type SnapshotRepository interface {
	Save(ctx context.Context, stats domain.VideoStats) error
	Latest(ctx context.Context, id domain.SessionID) (domain.VideoStats, error)
	Delete(ctx context.Context, id domain.SessionID) error
}
