package services

import (
	"context"
	"math"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"

	"go.uber.org/zap"
)

// playbackService drives the imperative control surface of a session's
// media element. It never touches sampling state; the next tick picks up
// whatever the element reports after a control call.
type playbackService struct {
	sessions *SessionService
	logger   *zap.SugaredLogger
}

func NewPlaybackService(sessions *SessionService, logger *zap.SugaredLogger) ports.PlaybackService {
	return &playbackService{sessions: sessions, logger: logger}
}

func (p *playbackService) Play(ctx context.Context, id domain.SessionID) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	return el.Play()
}

func (p *playbackService) Pause(ctx context.Context, id domain.SessionID) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	el.Pause()
	return nil
}

func (p *playbackService) TogglePlay(ctx context.Context, id domain.SessionID) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	if el.Paused() {
		return el.Play()
	}
	el.Pause()
	return nil
}

// Seek clamps the target position to [0, duration]. A NaN duration means
// the media metadata has not loaded, so only the lower bound applies.
func (p *playbackService) Seek(ctx context.Context, id domain.SessionID, position float64) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	el.Seek(clampPosition(position, el.Duration()))
	return nil
}

func (p *playbackService) SeekBy(ctx context.Context, id domain.SessionID, delta float64) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	el.Seek(clampPosition(el.CurrentTime()+delta, el.Duration()))
	return nil
}

func (p *playbackService) SetVolume(ctx context.Context, id domain.SessionID, level float64) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	el.SetVolume(math.Min(1, math.Max(0, level)))
	return nil
}

func (p *playbackService) ToggleMute(ctx context.Context, id domain.SessionID) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	el.SetMuted(!el.Muted())
	return nil
}

func (p *playbackService) SetRate(ctx context.Context, id domain.SessionID, rate float64) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	if math.IsNaN(rate) || rate <= 0 {
		rate = 1
	}
	el.SetPlaybackRate(rate)
	return nil
}

func (p *playbackService) RequestFullscreen(ctx context.Context, id domain.SessionID) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	if err := el.RequestFullscreen(); err != nil {
		p.logger.Warnw("fullscreen request rejected", "session_id", id, "error", err)
		return err
	}
	return nil
}

func (p *playbackService) EnterPictureInPicture(ctx context.Context, id domain.SessionID) error {
	el, err := p.sessions.elementFor(id)
	if err != nil {
		return err
	}
	if err := el.EnterPictureInPicture(); err != nil {
		p.logger.Warnw("picture-in-picture request rejected", "session_id", id, "error", err)
		return err
	}
	return nil
}

func clampPosition(position, duration float64) float64 {
	if math.IsNaN(position) || position < 0 {
		return 0
	}
	if !math.IsNaN(duration) && position > duration {
		return duration
	}
	return position
}
