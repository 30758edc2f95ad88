package services

import (
	"context"
	"sync"

	"playhud/internal/core/domain"
)

// fakeMediaElement is a scriptable media element for sampler and service
// tests. Zero value behaves like a freshly mounted element with no source.
type fakeMediaElement struct {
	mu sync.Mutex

	currentTime  float64
	duration     float64
	paused       bool
	volume       float64
	muted        bool
	playbackRate float64

	videoWidth, videoHeight   int
	clientWidth, clientHeight int

	buffered   []domain.TimeRange
	quality    domain.PlaybackQuality
	qualityOK  bool
	currentSrc string

	playErr    error
	playCalls  int
	pauseCalls int
	seekTo     []float64

	panicOnRead bool
}

func (f *fakeMediaElement) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnRead {
		panic("element detached")
	}
	return f.currentTime
}

func (f *fakeMediaElement) Duration() float64     { return f.duration }
func (f *fakeMediaElement) Paused() bool          { return f.paused }
func (f *fakeMediaElement) Volume() float64       { return f.volume }
func (f *fakeMediaElement) Muted() bool           { return f.muted }
func (f *fakeMediaElement) PlaybackRate() float64 { return f.playbackRate }
func (f *fakeMediaElement) VideoWidth() int       { return f.videoWidth }
func (f *fakeMediaElement) VideoHeight() int      { return f.videoHeight }
func (f *fakeMediaElement) ClientWidth() int      { return f.clientWidth }
func (f *fakeMediaElement) ClientHeight() int     { return f.clientHeight }

func (f *fakeMediaElement) Buffered() []domain.TimeRange { return f.buffered }

func (f *fakeMediaElement) PlaybackQuality() (domain.PlaybackQuality, bool) {
	return f.quality, f.qualityOK
}

func (f *fakeMediaElement) CurrentSrc() string { return f.currentSrc }

func (f *fakeMediaElement) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playCalls++
	if f.playErr != nil {
		return f.playErr
	}
	f.paused = false
	return nil
}

func (f *fakeMediaElement) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseCalls++
	f.paused = true
}

func (f *fakeMediaElement) Seek(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seekTo = append(f.seekTo, seconds)
	f.currentTime = seconds
}

func (f *fakeMediaElement) SetVolume(level float64)    { f.volume = level }
func (f *fakeMediaElement) SetMuted(muted bool)        { f.muted = muted }
func (f *fakeMediaElement) SetPlaybackRate(r float64)  { f.playbackRate = r }
func (f *fakeMediaElement) RequestFullscreen() error   { return nil }
func (f *fakeMediaElement) ExitFullscreen()            {}
func (f *fakeMediaElement) EnterPictureInPicture() error { return nil }
func (f *fakeMediaElement) ExitPictureInPicture()      {}

func (f *fakeMediaElement) lastSeek() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.seekTo) == 0 {
		return 0, false
	}
	return f.seekTo[len(f.seekTo)-1], true
}

// fakeEngine is a scriptable streaming engine.
type fakeEngine struct {
	mu sync.Mutex

	estimate float64

	levels       []domain.QualityLevel
	currentLevel int

	audioTracks  []domain.MediaTrack
	currentAudio int

	subtitleTracks  []domain.MediaTrack
	currentSubtitle int

	errs chan domain.EngineError

	setLevels    []int
	setAudio     []int
	setSubtitles []int
}

func newFakeEngine(estimate float64) *fakeEngine {
	return &fakeEngine{
		estimate:        estimate,
		currentLevel:    domain.AutoLevel,
		currentSubtitle: domain.AutoLevel,
		errs:            make(chan domain.EngineError, 4),
	}
}

func (f *fakeEngine) BandwidthEstimate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.estimate
}

func (f *fakeEngine) Levels() []domain.QualityLevel { return f.levels }
func (f *fakeEngine) CurrentLevel() int             { return f.currentLevel }

func (f *fakeEngine) SetCurrentLevel(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLevels = append(f.setLevels, index)
	f.currentLevel = index
}

func (f *fakeEngine) AudioTracks() []domain.MediaTrack { return f.audioTracks }
func (f *fakeEngine) CurrentAudioTrack() int           { return f.currentAudio }

func (f *fakeEngine) SetAudioTrack(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setAudio = append(f.setAudio, index)
	f.currentAudio = index
}

func (f *fakeEngine) SubtitleTracks() []domain.MediaTrack { return f.subtitleTracks }
func (f *fakeEngine) CurrentSubtitleTrack() int           { return f.currentSubtitle }

func (f *fakeEngine) SetSubtitleTrack(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setSubtitles = append(f.setSubtitles, index)
	f.currentSubtitle = index
}

func (f *fakeEngine) Errors() <-chan domain.EngineError { return f.errs }

// recordingObserver collects every snapshot it receives.
type recordingObserver struct {
	mu        sync.Mutex
	snapshots []domain.VideoStats
}

func (o *recordingObserver) ObserveSnapshot(stats domain.VideoStats) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshots = append(o.snapshots, stats)
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.snapshots)
}

func (o *recordingObserver) latest() (domain.VideoStats, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.snapshots) == 0 {
		return domain.VideoStats{}, false
	}
	return o.snapshots[len(o.snapshots)-1], true
}

// memRepo is a minimal in-memory snapshot repository for service tests.
type memRepo struct {
	mu    sync.Mutex
	saved map[domain.SessionID]domain.VideoStats
}

func newMemRepo() *memRepo {
	return &memRepo{saved: make(map[domain.SessionID]domain.VideoStats)}
}

func (r *memRepo) Save(_ context.Context, stats domain.VideoStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[stats.SessionID] = stats
	return nil
}

func (r *memRepo) Latest(_ context.Context, id domain.SessionID) (domain.VideoStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.saved[id]
	if !ok {
		return domain.VideoStats{}, domain.ErrSnapshotNotFound
	}
	return stats, nil
}

func (r *memRepo) Delete(_ context.Context, id domain.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.saved, id)
	return nil
}
