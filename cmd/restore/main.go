package main

import (
	"context"
	"flag"
	"time"

	backupinfra "playhud/internal/infrastructure/backup"
	repositories "playhud/internal/infrastructure/repositories"
	"playhud/pkg/backup"
	"playhud/pkg/config"
	"playhud/pkg/logger"
)

// restore loads an archived snapshot set back into the snapshot store,
// so an operator can inspect historical playback state through the API.
func main() {
	var (
		configPath  = flag.String("config", "configs/config.yaml", "path to config file")
		archiveName = flag.String("archive", "", "archive file name to restore (default: latest before -at)")
		atTime      = flag.String("at", "", "restore the newest archive at or before this RFC3339 time")
		overwrite   = flag.Bool("overwrite", false, "overwrite snapshots that already exist in the store")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	snapshotRepo := repoFactory.CreateSnapshotRepository()

	storage, err := backup.NewFileStorage(cfg.Archive.Directory)
	if err != nil {
		log.Fatalw("failed to open archive storage", "error", err)
	}

	backupService := backup.NewBackupService(storage, "1.0.0")
	restoreService := backupinfra.NewRestoreService(backupService, snapshotRepo, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	name := *archiveName
	if name == "" {
		target := time.Now()
		if *atTime != "" {
			target, err = time.Parse(time.RFC3339, *atTime)
			if err != nil {
				log.Fatalw("invalid -at time", "value", *atTime, "error", err)
			}
		}
		name, err = restoreService.FindBackupByTime(ctx, target)
		if err != nil {
			log.Fatalw("no archive found", "error", err)
		}
	}

	options := backupinfra.DefaultRestoreOptions()
	options.OverwriteExisting = *overwrite

	if err := restoreService.RestoreFromBackup(ctx, name, options); err != nil {
		log.Fatalw("restore failed", "archive", name, "error", err)
	}

	log.Infow("restore completed", "archive", name)
}
