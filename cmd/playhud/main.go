package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playhud/internal/core/services"
	httphandlers "playhud/internal/handlers/http"
	backupinfra "playhud/internal/infrastructure/backup"
	"playhud/internal/infrastructure/distributed"
	"playhud/internal/infrastructure/middleware"
	"playhud/internal/infrastructure/monitoring"
	repositories "playhud/internal/infrastructure/repositories"
	pushserver "playhud/internal/infrastructure/signal"
	"playhud/pkg/backup"
	"playhud/pkg/config"
	"playhud/pkg/logger"
	"playhud/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/playhud/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "playhud",
		JaegerURL:   cfg.Tracing.JaegerEndpoint,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	snapshotRepo := repoFactory.CreateSnapshotRepository()

	// Initialize monitoring
	prometheusCollector := monitoring.NewPrometheusCollector()

	// Initialize services. The Prometheus collector observes every
	// published snapshot; the push server and the cross-instance bus
	// register later once the service exists.
	sessionService := services.NewSessionService(
		snapshotRepo,
		cfg.Sampler.Interval,
		log,
		prometheusCollector,
	)
	playbackService := services.NewPlaybackService(sessionService, log)
	trackService := services.NewTrackService(sessionService, log)
	authService := services.NewAuthService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	instrumentedSessions := monitoring.NewInstrumentedSessionService(sessionService, prometheusCollector)

	// Initialize WebSocket push server
	wsServer := pushserver.NewWebSocketServer(instrumentedSessions, log)
	wsServer.SetPingInterval(cfg.Push.PingInterval)
	wsServer.SetPongTimeout(cfg.Push.PongTimeout)
	if cfg.RateLimiting.Enabled {
		wsServer.SetMaxConnections(cfg.RateLimiting.WebSocket.MaxConcurrent)
	}
	sessionService.AddObserver(wsServer)

	// Fan snapshots out to other instances when Redis is in use. Remote
	// snapshots feed the local push server, so overlay clients can follow
	// sessions whose samplers run elsewhere.
	if client := repoFactory.RedisClient(); client != nil {
		bus := distributed.NewSnapshotBus(client, uuid.NewString(), log)
		defer bus.Close()
		sessionService.AddObserver(bus)

		busCtx, busCancel := context.WithCancel(context.Background())
		defer busCancel()
		go func() {
			err := bus.Subscribe(busCtx, func(event *distributed.Event) error {
				if event.Type == distributed.EventSnapshotPublished && event.Snapshot != nil {
					wsServer.ObserveSnapshot(*event.Snapshot)
				}
				return nil
			})
			if err != nil && busCtx.Err() == nil {
				log.Errorw("snapshot bus subscription ended", "error", err)
			}
		}()
	}

	// Periodic snapshot archives for post-hoc diagnostics
	if cfg.Archive.Enabled {
		archiveStorage, err := backup.NewFileStorage(cfg.Archive.Directory)
		if err != nil {
			log.Fatalw("failed to create archive storage", "error", err)
		}
		archiveService := backup.NewBackupService(archiveStorage, "1.0.0")
		archiveScheduler := backupinfra.NewScheduler(archiveService, instrumentedSessions, backupinfra.Config{
			Interval:      cfg.Archive.Interval,
			RetentionDays: cfg.Archive.RetentionDays,
		}, log)
		go archiveScheduler.Start(context.Background())
		defer archiveScheduler.Stop()
	}

	// Initialize HTTP handlers
	authHandler := httphandlers.NewAuthHandler(authService)
	sessionHandler := httphandlers.NewSessionHandler(instrumentedSessions, playbackService, trackService)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestLogMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	// Setup auth routes (public)
	authHandler.SetupRoutes(router)

	// Setup session routes with authentication
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(authService))
	{
		api.POST("/sessions", sessionHandler.CreateSession)
		api.GET("/sessions", sessionHandler.ListSessions)
		api.GET("/sessions/:id", sessionHandler.GetSession)
		api.DELETE("/sessions/:id", sessionHandler.CloseSession)
		api.GET("/sessions/:id/stats", sessionHandler.GetStats)

		// Playback control endpoints
		api.POST("/sessions/:id/play", sessionHandler.Play)
		api.POST("/sessions/:id/pause", sessionHandler.Pause)
		api.POST("/sessions/:id/toggle", sessionHandler.TogglePlay)
		api.POST("/sessions/:id/seek", sessionHandler.Seek)
		api.POST("/sessions/:id/seek-by", sessionHandler.SeekBy)
		api.POST("/sessions/:id/volume", sessionHandler.SetVolume)
		api.POST("/sessions/:id/mute", sessionHandler.ToggleMute)
		api.POST("/sessions/:id/rate", sessionHandler.SetRate)
		api.POST("/sessions/:id/fullscreen", sessionHandler.RequestFullscreen)
		api.POST("/sessions/:id/pip", sessionHandler.EnterPictureInPicture)

		// Track selection endpoints
		api.GET("/sessions/:id/levels", sessionHandler.Levels)
		api.POST("/sessions/:id/levels", sessionHandler.SetLevel)
		api.GET("/sessions/:id/audio", sessionHandler.AudioTracks)
		api.POST("/sessions/:id/audio", sessionHandler.SetAudioTrack)
		api.GET("/sessions/:id/subtitles", sessionHandler.SubtitleTracks)
		api.POST("/sessions/:id/subtitles", sessionHandler.SetSubtitleTrack)
	}

	// WebSocket push endpoint for overlay clients
	router.GET("/ws", gin.WrapF(wsServer.HandleWebSocket))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now(),
			"uptime":      time.Since(startTime).String(),
			"connections": wsServer.ConnectionCount(),
		})
	})

	// Readiness endpoint
	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("snapshot_store", repoFactory.HealthCheck, 2*time.Second)

	router.GET("/ready", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		if status.Status != "healthy" {
			c.JSON(503, status)
			return
		}
		c.JSON(200, status)
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting PlayHUD server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down PlayHUD server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		// Force close if graceful shutdown fails
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	// Close every open session so samplers stop cleanly
	if sessions, err := instrumentedSessions.ListSessions(shutdownCtx); err == nil {
		for _, session := range sessions {
			if err := instrumentedSessions.CloseSession(shutdownCtx, session.ID); err != nil {
				log.Warnw("Error closing session during shutdown", "session_id", session.ID, "error", err)
			}
		}
	}

	// Flush tracing spans
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer provider", "error", err)
	}

	// Close repository factory
	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("PlayHUD server stopped")
}
