package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/backup"

	"go.uber.org/zap"
)

// RestoreService loads archived snapshots back into the snapshot store.
// Sessions themselves are not recreated; a restored snapshot is readable
// history, not a live sampler.
type RestoreService struct {
	backupService *backup.BackupService
	snapshotRepo  ports.SnapshotRepository
	logger        *zap.SugaredLogger
}

// NewRestoreService creates a new restore service
func NewRestoreService(
	backupService *backup.BackupService,
	snapshotRepo ports.SnapshotRepository,
	logger *zap.SugaredLogger,
) *RestoreService {
	return &RestoreService{
		backupService: backupService,
		snapshotRepo:  snapshotRepo,
		logger:        logger,
	}
}

// RestoreOptions contains restore options
type RestoreOptions struct {
	OverwriteExisting bool
	PointInTime       *time.Time // For point-in-time recovery
}

// DefaultRestoreOptions returns default restore options
func DefaultRestoreOptions() RestoreOptions {
	return RestoreOptions{
		OverwriteExisting: false,
	}
}

// RestoreFromBackup restores snapshots from a specific backup.
func (rs *RestoreService) RestoreFromBackup(ctx context.Context, backupName string, options RestoreOptions) error {
	rs.logger.Infow("starting restore", "backup_name", backupName, "options", options)

	backupData, err := rs.backupService.RestoreBackup(ctx, backupName)
	if err != nil {
		return fmt.Errorf("failed to load backup: %w", err)
	}

	if backupData.Version == "" {
		return fmt.Errorf("invalid backup: missing version")
	}

	if err := rs.restoreSnapshots(ctx, backupData.Snapshots, options); err != nil {
		return fmt.Errorf("failed to restore snapshots: %w", err)
	}

	rs.logger.Infow("restore completed successfully", "backup_name", backupName)
	return nil
}

func (rs *RestoreService) restoreSnapshots(ctx context.Context, snapshots map[string]interface{}, options RestoreOptions) error {
	for sessionIDStr, snapshotData := range snapshots {
		sessionID := domain.SessionID(sessionIDStr)

		if !options.OverwriteExisting {
			if _, err := rs.snapshotRepo.Latest(ctx, sessionID); err == nil {
				rs.logger.Debugw("skipping existing snapshot", "session_id", sessionID)
				continue
			}
		}

		snapshotJSON, err := json.Marshal(snapshotData)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}

		var stats domain.VideoStats
		if err := json.Unmarshal(snapshotJSON, &stats); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		stats.SessionID = sessionID

		if err := rs.snapshotRepo.Save(ctx, stats); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}

		rs.logger.Debugw("restored snapshot", "session_id", sessionID)
	}

	return nil
}

// FindBackupByTime finds the closest backup at or before a given time.
func (rs *RestoreService) FindBackupByTime(ctx context.Context, targetTime time.Time) (string, error) {
	backups, err := rs.backupService.ListBackups(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list backups: %w", err)
	}

	var closestBackup string
	var closestTime time.Time
	var found bool

	for _, backupName := range backups {
		if len(backupName) < 22 {
			continue
		}

		timestampStr := backupName[7:22]
		timestamp, err := time.Parse("20060102-150405", timestampStr)
		if err != nil {
			continue
		}

		if timestamp.Before(targetTime) || timestamp.Equal(targetTime) {
			if !found || timestamp.After(closestTime) {
				closestBackup = backupName
				closestTime = timestamp
				found = true
			}
		}
	}

	if !found {
		return "", fmt.Errorf("no backup found before or at target time: %v", targetTime)
	}

	return closestBackup, nil
}
