package services

import (
	"context"
	"math"
	"testing"
	"time"

	"playhud/internal/core/domain"
	"playhud/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSampler_Sample(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	element := &fakeMediaElement{
		currentTime:  10,
		videoWidth:   1920,
		videoHeight:  1080,
		clientWidth:  960,
		clientHeight: 540,
		buffered: []domain.TimeRange{
			{Start: 0, End: 5},
			{Start: 8, End: 20},
		},
		quality:    domain.PlaybackQuality{DroppedVideoFrames: 3},
		qualityOK:  true,
		currentSrc: "https://cdn.example.com/live/show.m3u8",
	}
	engine := newFakeEngine(6_500_000)

	s := NewSampler("sess_1", element, engine, time.Second, logger)
	stats := s.Sample()

	assert.Equal(t, domain.SessionID("sess_1"), stats.SessionID)
	assert.Equal(t, "1920x1080", stats.Resolution)
	assert.Equal(t, "960x540", stats.Viewport)
	assert.Equal(t, "1080p", stats.QualityLabel)
	assert.Equal(t, "10.0s", stats.Buffer)
	assert.Equal(t, "show.m3u8", stats.URL)
	assert.Equal(t, uint64(3), stats.DroppedFrames)
	assert.Equal(t, "6.5 Mbps", stats.Bandwidth)
	assert.Equal(t, 6_500_000.0, stats.Bitrate)
	assert.Equal(t, domain.NetworkGood, stats.NetworkColor)
	assert.False(t, stats.SampledAt.IsZero())
}

func TestSampler_SampleIsRepeatable(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	frozen := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	restore := utils.Now
	utils.Now = func() time.Time { return frozen }
	t.Cleanup(func() { utils.Now = restore })

	element := &fakeMediaElement{
		currentTime:  10,
		videoWidth:   1920,
		videoHeight:  1080,
		clientWidth:  960,
		clientHeight: 540,
		buffered:     []domain.TimeRange{{Start: 8, End: 20}},
		quality:      domain.PlaybackQuality{DroppedVideoFrames: 3},
		qualityOK:    true,
		currentSrc:   "https://cdn.example.com/live/show.m3u8",
	}
	engine := newFakeEngine(6_500_000)

	s := NewSampler("sess_steady", element, engine, time.Second, logger)

	// With the host readings unchanged between calls, two samples must be
	// structurally identical, timestamp included.
	first := s.Sample()
	second := s.Sample()

	assert.Equal(t, first, second)
	assert.Equal(t, frozen, second.SampledAt)
}

func TestSampler_SampleWithoutEngine(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	element := &fakeMediaElement{
		videoWidth:  1280,
		videoHeight: 720,
	}

	s := NewSampler("sess_native", element, nil, time.Second, logger)
	stats := s.Sample()

	assert.Equal(t, "720p", stats.QualityLabel)
	assert.Equal(t, 0.0, stats.Bitrate)
	assert.Equal(t, "0.0 Mbps", stats.Bandwidth)
	assert.Equal(t, domain.NetworkUnknown, stats.NetworkColor)
	assert.Equal(t, uint64(0), stats.DroppedFrames)
	assert.Equal(t, "manifest.m3u8", stats.URL)
}

func TestSampler_SampleWithInvalidEstimate(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	element := &fakeMediaElement{}
	engine := newFakeEngine(math.NaN())

	s := NewSampler("sess_warmup", element, engine, time.Second, logger)
	stats := s.Sample()

	assert.Equal(t, 0.0, stats.Bitrate)
	assert.Equal(t, "0.0 Mbps", stats.Bandwidth)
	assert.Equal(t, domain.NetworkUnknown, stats.NetworkColor)
}

func TestSampler_NilElementNeverStarts(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	obs := &recordingObserver{}
	s := NewSampler("sess_bare", nil, nil, 5*time.Millisecond, logger)
	s.AddObserver(obs)

	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, 0, obs.count())
	assert.Equal(t, domain.DefaultVideoStats("sess_bare"), s.Snapshot())
}

func TestSampler_DefaultSnapshotBeforeFirstTick(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	s := NewSampler("sess_fresh", &fakeMediaElement{}, nil, time.Second, logger)
	got := s.Snapshot()

	assert.Equal(t, "N/A", got.URL)
	assert.Equal(t, "0x0", got.Resolution)
	assert.Equal(t, "0x0", got.Viewport)
	assert.Equal(t, "0.0s", got.Buffer)
	assert.Equal(t, "0.0 Mbps", got.Bandwidth)
	assert.Equal(t, "SD", got.QualityLabel)
	assert.Equal(t, domain.NetworkUnknown, got.NetworkColor)
	assert.Equal(t, 0.0, got.Bitrate)
}

func TestSampler_PublishesPeriodically(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	element := &fakeMediaElement{videoHeight: 1080, currentSrc: "clip.mp4"}
	obs := &recordingObserver{}

	s := NewSampler("sess_live", element, nil, 5*time.Millisecond, logger)
	s.AddObserver(obs)
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool { return obs.count() >= 3 }, time.Second, time.Millisecond)

	latest, ok := obs.latest()
	require.True(t, ok)
	assert.Equal(t, "1080p", latest.QualityLabel)
	assert.Equal(t, "clip.mp4", latest.URL)
	assert.Equal(t, latest, s.Snapshot())
}

func TestSampler_StartIsIdempotent(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	s := NewSampler("sess_twice", &fakeMediaElement{}, nil, 5*time.Millisecond, logger)
	s.Start(context.Background())
	s.Start(context.Background())
	s.Stop()
}

func TestSampler_StopIsSynchronous(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	element := &fakeMediaElement{}
	obs := &recordingObserver{}

	s := NewSampler("sess_stop", element, nil, time.Millisecond, logger)
	s.AddObserver(obs)
	s.Start(context.Background())

	require.Eventually(t, func() bool { return obs.count() >= 1 }, time.Second, time.Millisecond)
	s.Stop()

	seen := obs.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, seen, obs.count(), "no snapshot may be published after Stop returns")

	// A second Stop is a no-op.
	s.Stop()
}

func TestSampler_RecoversFromPanickingElement(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	element := &fakeMediaElement{panicOnRead: true}
	obs := &recordingObserver{}

	s := NewSampler("sess_panic", element, nil, time.Millisecond, logger)
	s.AddObserver(obs)
	s.Start(context.Background())
	defer s.Stop()

	// The loop must survive the panicking reads; no snapshot is published
	// but the goroutine keeps ticking and Stop still works.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, obs.count())
}
