package ports

import (
	"context"

	"playhud/internal/core/domain"
)

type SessionService interface {
	CreateSession(ctx context.Context, label string, owner domain.UserID) (*domain.PlayerSession, error)
	GetSession(ctx context.Context, id domain.SessionID) (*domain.PlayerSession, error)
	ListSessions(ctx context.Context) ([]*domain.PlayerSession, error)
	CloseSession(ctx context.Context, id domain.SessionID) error

	AttachMedia(ctx context.Context, id domain.SessionID, element MediaElement) error
	AttachEngine(ctx context.Context, id domain.SessionID, engine StreamingEngine) error
	DetachMedia(ctx context.Context, id domain.SessionID) error
	DetachEngine(ctx context.Context, id domain.SessionID) error

	// Snapshot returns the most recent telemetry snapshot for the session,
	// or the documented default when no tick has run yet.
	Snapshot(ctx context.Context, id domain.SessionID) (domain.VideoStats, error)
}

type PlaybackService interface {
	Play(ctx context.Context, id domain.SessionID) error
	Pause(ctx context.Context, id domain.SessionID) error
	TogglePlay(ctx context.Context, id domain.SessionID) error
	Seek(ctx context.Context, id domain.SessionID, position float64) error
	SeekBy(ctx context.Context, id domain.SessionID, delta float64) error
	SetVolume(ctx context.Context, id domain.SessionID, level float64) error
	ToggleMute(ctx context.Context, id domain.SessionID) error
	SetRate(ctx context.Context, id domain.SessionID, rate float64) error
	RequestFullscreen(ctx context.Context, id domain.SessionID) error
	EnterPictureInPicture(ctx context.Context, id domain.SessionID) error
}

type TrackService interface {
	Levels(ctx context.Context, id domain.SessionID) ([]domain.QualityLevel, int, error)
	SetLevel(ctx context.Context, id domain.SessionID, index int) error
	AudioTracks(ctx context.Context, id domain.SessionID) ([]domain.MediaTrack, int, error)
	SetAudioTrack(ctx context.Context, id domain.SessionID, index int) error
	SubtitleTracks(ctx context.Context, id domain.SessionID) ([]domain.MediaTrack, int, error)
	SetSubtitleTrack(ctx context.Context, id domain.SessionID, index int) error
}

// SnapshotObserver receives every snapshot the sampler publishes.
// Observers must not block; slow delivery belongs in the observer.
type SnapshotObserver interface {
	ObserveSnapshot(stats domain.VideoStats)
}
