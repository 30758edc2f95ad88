package services

import (
	"context"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"

	"go.uber.org/zap"
)

// trackService exposes the engine's rendition and track lists. Every
// setter validates the index against the current list before forwarding,
// with domain.AutoLevel always accepted (automatic quality, subtitles off).
type trackService struct {
	sessions *SessionService
	logger   *zap.SugaredLogger
}

func NewTrackService(sessions *SessionService, logger *zap.SugaredLogger) ports.TrackService {
	return &trackService{sessions: sessions, logger: logger}
}

func (t *trackService) Levels(ctx context.Context, id domain.SessionID) ([]domain.QualityLevel, int, error) {
	eng, err := t.sessions.engineFor(id)
	if err != nil {
		return nil, 0, err
	}
	return eng.Levels(), eng.CurrentLevel(), nil
}

func (t *trackService) SetLevel(ctx context.Context, id domain.SessionID, index int) error {
	eng, err := t.sessions.engineFor(id)
	if err != nil {
		return err
	}
	if index != domain.AutoLevel && (index < 0 || index >= len(eng.Levels())) {
		return domain.ErrLevelOutOfRange
	}
	eng.SetCurrentLevel(index)
	t.logger.Debugw("quality level set", "session_id", id, "level", index)
	return nil
}

func (t *trackService) AudioTracks(ctx context.Context, id domain.SessionID) ([]domain.MediaTrack, int, error) {
	eng, err := t.sessions.engineFor(id)
	if err != nil {
		return nil, 0, err
	}
	return eng.AudioTracks(), eng.CurrentAudioTrack(), nil
}

func (t *trackService) SetAudioTrack(ctx context.Context, id domain.SessionID, index int) error {
	eng, err := t.sessions.engineFor(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(eng.AudioTracks()) {
		return domain.ErrTrackOutOfRange
	}
	eng.SetAudioTrack(index)
	t.logger.Debugw("audio track set", "session_id", id, "track", index)
	return nil
}

func (t *trackService) SubtitleTracks(ctx context.Context, id domain.SessionID) ([]domain.MediaTrack, int, error) {
	eng, err := t.sessions.engineFor(id)
	if err != nil {
		return nil, 0, err
	}
	return eng.SubtitleTracks(), eng.CurrentSubtitleTrack(), nil
}

func (t *trackService) SetSubtitleTrack(ctx context.Context, id domain.SessionID, index int) error {
	eng, err := t.sessions.engineFor(id)
	if err != nil {
		return err
	}
	if index != domain.AutoLevel && (index < 0 || index >= len(eng.SubtitleTracks())) {
		return domain.ErrTrackOutOfRange
	}
	eng.SetSubtitleTrack(index)
	t.logger.Debugw("subtitle track set", "session_id", id, "track", index)
	return nil
}
