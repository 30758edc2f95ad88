package services

import (
	"context"
	"math"
	"sync"
	"time"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/utils"

	"go.uber.org/zap"
)

// DefaultSampleInterval is the cadence of the diagnostics overlay.
const DefaultSampleInterval = time.Second

// Sampler periodically reads transient state from a media element and an
// optional streaming engine and publishes immutable VideoStats snapshots.
// It holds no state across ticks beyond the last published snapshot;
// every tick recomputes from scratch.
//
// A Sampler is bound to one element/engine pair for its whole lifetime.
// Swapping handles means stopping this sampler and starting a new one,
// which is what SessionService does.
type Sampler struct {
	sessionID domain.SessionID
	element   ports.MediaElement
	engine    ports.StreamingEngine
	interval  time.Duration
	logger    *zap.SugaredLogger

	mu        sync.RWMutex
	last      domain.VideoStats
	observers []ports.SnapshotObserver
	cancel    context.CancelFunc
	done      chan struct{}
	running   bool
}

// NewSampler creates a sampler for one element/engine pair. Either handle
// may be nil: a nil engine degrades bandwidth fields to zero/unknown, a
// nil element means Start never arms the timer.
func NewSampler(
	sessionID domain.SessionID,
	element ports.MediaElement,
	engine ports.StreamingEngine,
	interval time.Duration,
	logger *zap.SugaredLogger,
) *Sampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Sampler{
		sessionID: sessionID,
		element:   element,
		engine:    engine,
		interval:  interval,
		logger:    logger,
		last:      domain.DefaultVideoStats(sessionID),
	}
}

// AddObserver registers an observer for every published snapshot.
// Must be called before Start.
func (s *Sampler) AddObserver(obs ports.SnapshotObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// Start arms the periodic timer. It is a no-op when no media element is
// attached or the sampler is already running.
func (s *Sampler) Start(ctx context.Context) {
	if s.element == nil {
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.mu.Unlock()

	go s.run(ctx)
}

// Stop disarms the timer and waits for any in-flight tick to finish.
// After Stop returns, no further snapshot is published.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

// Snapshot returns the most recently published snapshot, or the default
// snapshot if no tick has run yet. Consumers always observe a complete,
// internally consistent value.
func (s *Sampler) Snapshot() domain.VideoStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Sampler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Sampler) tick() {
	// A misbehaving host handle must not kill the sampling loop; the
	// next tick recomputes from scratch anyway.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warnw("sampler tick failed",
				"session_id", s.sessionID,
				"panic", r,
			)
		}
	}()

	s.publish(s.Sample())
}

// Sample performs one full read of the attached handles and returns the
// assembled snapshot. It never mutates the element or engine.
func (s *Sampler) Sample() domain.VideoStats {
	el := s.element

	stats := domain.DefaultVideoStats(s.sessionID)
	stats.SampledAt = utils.Now()

	stats.Viewport = FormatDimensions(el.ClientWidth(), el.ClientHeight())
	stats.Resolution = FormatDimensions(el.VideoWidth(), el.VideoHeight())
	stats.QualityLabel = QualityLabel(el.VideoHeight())
	stats.Buffer = FormatBuffer(BufferAhead(el.Buffered(), el.CurrentTime()))
	stats.URL = SourceName(el.CurrentSrc())

	if quality, ok := el.PlaybackQuality(); ok {
		stats.DroppedFrames = quality.DroppedVideoFrames
	}

	if s.engine != nil {
		if est := s.engine.BandwidthEstimate(); isValidEstimate(est) {
			stats.Bitrate = est
			stats.Bandwidth = FormatBandwidth(est)
			stats.NetworkColor = NetworkHealth(est / 1e6)
		}
	}

	return stats
}

func (s *Sampler) publish(stats domain.VideoStats) {
	s.mu.Lock()
	s.last = stats
	observers := make([]ports.SnapshotObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, obs := range observers {
		obs.ObserveSnapshot(stats)
	}
}

func isValidEstimate(est float64) bool {
	return !math.IsNaN(est) && !math.IsInf(est, 0) && est >= 0
}
