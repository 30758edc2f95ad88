package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sessionState struct {
	session *domain.PlayerSession
	element ports.MediaElement
	engine  ports.StreamingEngine
	sampler *Sampler

	// watchCancel stops the engine error watcher; nil when no engine.
	watchCancel context.CancelFunc
}

// SessionService owns the registry of monitored playback sessions and the
// lifecycle of their samplers. Attaching or detaching a handle tears down
// the session's sampler and starts a fresh one bound to the new pair, so
// no tick ever fires against a stale element or engine.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionState

	repo      ports.SnapshotRepository
	interval  time.Duration
	observers []ports.SnapshotObserver
	logger    *zap.SugaredLogger
}

func NewSessionService(
	repo ports.SnapshotRepository,
	interval time.Duration,
	logger *zap.SugaredLogger,
	observers ...ports.SnapshotObserver,
) *SessionService {
	return &SessionService{
		sessions:  make(map[domain.SessionID]*sessionState),
		repo:      repo,
		interval:  interval,
		observers: observers,
		logger:    logger,
	}
}

// AddObserver registers an additional snapshot observer. Samplers
// started after the call fan out to it; running samplers are unaffected
// until their session's handles change.
func (s *SessionService) AddObserver(obs ports.SnapshotObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

func (s *SessionService) CreateSession(ctx context.Context, label string, owner domain.UserID) (*domain.PlayerSession, error) {
	session := &domain.PlayerSession{
		ID:        domain.SessionID("sess_" + uuid.NewString()),
		Label:     label,
		Owner:     owner,
		CreatedAt: utils.Now(),
	}

	if err := s.repo.Save(ctx, domain.DefaultVideoStats(session.ID)); err != nil {
		return nil, fmt.Errorf("failed to seed snapshot: %w", err)
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{session: session}
	s.mu.Unlock()

	s.logger.Infow("session created", "session_id", session.ID, "label", label)
	return session, nil
}

func (s *SessionService) GetSession(ctx context.Context, id domain.SessionID) (*domain.PlayerSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.sessions[id]
	if !exists {
		return nil, domain.ErrSessionNotFound
	}
	copied := *st.session
	return &copied, nil
}

func (s *SessionService) ListSessions(ctx context.Context) ([]*domain.PlayerSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*domain.PlayerSession, 0, len(s.sessions))
	for _, st := range s.sessions {
		copied := *st.session
		sessions = append(sessions, &copied)
	}
	return sessions, nil
}

func (s *SessionService) CloseSession(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	st, exists := s.sessions[id]
	if !exists {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	s.teardown(st)

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warnw("failed to delete snapshot", "session_id", id, "error", err)
	}

	s.logger.Infow("session closed", "session_id", id)
	return nil
}

// AttachMedia binds a media element to the session and restarts its
// sampler against the new handle. A nil element is equivalent to
// DetachMedia.
func (s *SessionService) AttachMedia(ctx context.Context, id domain.SessionID, element ports.MediaElement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.sessions[id]
	if !exists {
		return domain.ErrSessionNotFound
	}

	st.element = element
	st.session.HasMedia = element != nil
	s.restartSampler(st)
	return nil
}

// AttachEngine binds a streaming engine to the session, restarts the
// sampler, and begins consuming the engine's error channel.
func (s *SessionService) AttachEngine(ctx context.Context, id domain.SessionID, engine ports.StreamingEngine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.sessions[id]
	if !exists {
		return domain.ErrSessionNotFound
	}

	if st.watchCancel != nil {
		st.watchCancel()
		st.watchCancel = nil
	}

	st.engine = engine
	st.session.HasEngine = engine != nil
	st.session.Degraded = false
	s.restartSampler(st)

	if engine != nil {
		watchCtx, cancel := context.WithCancel(context.Background())
		st.watchCancel = cancel
		go s.watchEngine(watchCtx, id, engine)
	}
	return nil
}

func (s *SessionService) DetachMedia(ctx context.Context, id domain.SessionID) error {
	return s.AttachMedia(ctx, id, nil)
}

func (s *SessionService) DetachEngine(ctx context.Context, id domain.SessionID) error {
	return s.AttachEngine(ctx, id, nil)
}

// Snapshot returns the latest published snapshot for the session. Before
// the first tick (or with no element attached) this is the documented
// default snapshot.
func (s *SessionService) Snapshot(ctx context.Context, id domain.SessionID) (domain.VideoStats, error) {
	s.mu.RLock()
	st, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return domain.VideoStats{}, domain.ErrSessionNotFound
	}
	if st.sampler == nil {
		return domain.DefaultVideoStats(id), nil
	}
	return st.sampler.Snapshot(), nil
}

// restartSampler replaces the session's sampler with one bound to the
// current handle pair. Callers must hold s.mu.
func (s *SessionService) restartSampler(st *sessionState) {
	if st.sampler != nil {
		st.sampler.Stop()
		st.sampler = nil
	}
	if st.element == nil {
		return
	}

	sampler := NewSampler(st.session.ID, st.element, st.engine, s.interval, s.logger)
	sampler.AddObserver(&repoObserver{repo: s.repo, logger: s.logger})
	for _, obs := range s.observers {
		sampler.AddObserver(obs)
	}
	sampler.Start(context.Background())
	st.sampler = sampler
}

func (s *SessionService) teardown(st *sessionState) {
	if st.watchCancel != nil {
		st.watchCancel()
		st.watchCancel = nil
	}
	if st.sampler != nil {
		st.sampler.Stop()
		st.sampler = nil
	}
}

// watchEngine consumes the engine's error channel. Recoverable errors are
// logged; a fatal error detaches the engine and marks the session
// degraded so the overlay can tell native fallback from healthy playback.
func (s *SessionService) watchEngine(ctx context.Context, id domain.SessionID, engine ports.StreamingEngine) {
	for {
		select {
		case <-ctx.Done():
			return
		case engErr, ok := <-engine.Errors():
			if !ok {
				return
			}
			if !engErr.Fatal {
				s.logger.Warnw("engine reported recoverable error",
					"session_id", id,
					"kind", engErr.Kind,
					"detail", engErr.Detail,
				)
				continue
			}

			s.logger.Errorw("engine reported fatal error",
				"session_id", id,
				"kind", engErr.Kind,
				"detail", engErr.Detail,
			)
			s.markDegraded(id)
			return
		}
	}
}

func (s *SessionService) markDegraded(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.sessions[id]
	if !exists {
		return
	}
	if st.watchCancel != nil {
		st.watchCancel()
		st.watchCancel = nil
	}
	st.engine = nil
	st.session.HasEngine = false
	st.session.Degraded = true
	s.restartSampler(st)
}

// elementFor and engineFor expose the live handles to the playback and
// track services without widening the public interface.
func (s *SessionService) elementFor(id domain.SessionID) (ports.MediaElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.sessions[id]
	if !exists {
		return nil, domain.ErrSessionNotFound
	}
	if st.element == nil {
		return nil, domain.ErrNoMediaElement
	}
	return st.element, nil
}

func (s *SessionService) engineFor(id domain.SessionID) (ports.StreamingEngine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.sessions[id]
	if !exists {
		return nil, domain.ErrSessionNotFound
	}
	if st.engine == nil {
		return nil, domain.ErrNoEngine
	}
	return st.engine, nil
}

// repoObserver persists every published snapshot through the repository.
type repoObserver struct {
	repo   ports.SnapshotRepository
	logger *zap.SugaredLogger
}

func (o *repoObserver) ObserveSnapshot(stats domain.VideoStats) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := o.repo.Save(ctx, stats); err != nil {
		o.logger.Warnw("failed to persist snapshot",
			"session_id", stats.SessionID,
			"error", err,
		)
	}
}
