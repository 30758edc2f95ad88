package services

import (
	"context"
	"testing"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTrackFixture(t *testing.T, engine *fakeEngine) (ports.TrackService, domain.SessionID) {
	t.Helper()
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "fixture", "user_1")
	require.NoError(t, err)
	require.NoError(t, svc.AttachMedia(ctx, session.ID, &fakeMediaElement{}))
	if engine != nil {
		require.NoError(t, svc.AttachEngine(ctx, session.ID, engine))
	}
	t.Cleanup(func() { _ = svc.CloseSession(context.Background(), session.ID) })

	logger := zaptest.NewLogger(t).Sugar()
	return NewTrackService(svc, logger), session.ID
}

func threeLevels() []domain.QualityLevel {
	return []domain.QualityLevel{
		{ID: 0, Width: 640, Height: 360, Bitrate: 800_000},
		{ID: 1, Width: 1280, Height: 720, Bitrate: 2_500_000},
		{ID: 2, Width: 1920, Height: 1080, Bitrate: 6_000_000},
	}
}

func TestTrackService_Levels(t *testing.T) {
	engine := newFakeEngine(0)
	engine.levels = threeLevels()
	tracks, id := newTrackFixture(t, engine)

	levels, current, err := tracks.Levels(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, levels, 3)
	assert.Equal(t, domain.AutoLevel, current)
}

func TestTrackService_SetLevel(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		wantErr error
	}{
		{"valid index", 1, nil},
		{"auto selection", domain.AutoLevel, nil},
		{"index too large", 3, domain.ErrLevelOutOfRange},
		{"negative non-auto index", -2, domain.ErrLevelOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFakeEngine(0)
			engine.levels = threeLevels()
			tracks, id := newTrackFixture(t, engine)

			err := tracks.SetLevel(context.Background(), id, tt.index)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, engine.setLevels)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []int{tt.index}, engine.setLevels)
		})
	}
}

func TestTrackService_AudioTracks(t *testing.T) {
	engine := newFakeEngine(0)
	engine.audioTracks = []domain.MediaTrack{
		{ID: 0, Name: "Stereo", Language: "en"},
		{ID: 1, Name: "Commentary", Language: "en"},
	}
	engine.currentAudio = 0
	tracks, id := newTrackFixture(t, engine)
	ctx := context.Background()

	list, current, err := tracks.AudioTracks(ctx, id)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 0, current)

	require.NoError(t, tracks.SetAudioTrack(ctx, id, 1))
	assert.Equal(t, 1, engine.currentAudio)

	err = tracks.SetAudioTrack(ctx, id, 2)
	assert.ErrorIs(t, err, domain.ErrTrackOutOfRange)

	// Audio has no "off" index; auto is rejected too.
	err = tracks.SetAudioTrack(ctx, id, domain.AutoLevel)
	assert.ErrorIs(t, err, domain.ErrTrackOutOfRange)
}

func TestTrackService_SubtitleTracks(t *testing.T) {
	engine := newFakeEngine(0)
	engine.subtitleTracks = []domain.MediaTrack{
		{ID: 0, Name: "English", Language: "en"},
	}
	tracks, id := newTrackFixture(t, engine)
	ctx := context.Background()

	list, current, err := tracks.SubtitleTracks(ctx, id)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, domain.AutoLevel, current)

	require.NoError(t, tracks.SetSubtitleTrack(ctx, id, 0))
	assert.Equal(t, 0, engine.currentSubtitle)

	// AutoLevel turns subtitles off.
	require.NoError(t, tracks.SetSubtitleTrack(ctx, id, domain.AutoLevel))
	assert.Equal(t, domain.AutoLevel, engine.currentSubtitle)

	err = tracks.SetSubtitleTrack(ctx, id, 5)
	assert.ErrorIs(t, err, domain.ErrTrackOutOfRange)
}

func TestTrackService_NoEngine(t *testing.T) {
	tracks, id := newTrackFixture(t, nil)
	ctx := context.Background()

	_, _, err := tracks.Levels(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNoEngine)

	err = tracks.SetLevel(ctx, id, 0)
	assert.ErrorIs(t, err, domain.ErrNoEngine)
}
