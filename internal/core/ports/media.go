package ports

import "playhud/internal/core/domain"

// MediaElement is a live handle to a mounted playback surface. All reads
// are synchronous property accesses; none of them block. Implementations
// must tolerate being read from a single sampler goroutine at 1 Hz.
type MediaElement interface {
	// Playback cursor and transport state.
	CurrentTime() float64
	Duration() float64
	Paused() bool
	Volume() float64
	Muted() bool
	PlaybackRate() float64

	// Decode dimensions (independent of display size).
	VideoWidth() int
	VideoHeight() int

	// Rendered CSS dimensions of the display surface.
	ClientWidth() int
	ClientHeight() int

	// Buffered returns the element's buffered time ranges: disjoint
	// intervals in arbitrary order.
	Buffered() []domain.TimeRange

	// PlaybackQuality reports decode-quality metrics. The second return
	// is false when the host does not support the facility.
	PlaybackQuality() (domain.PlaybackQuality, bool)

	// CurrentSrc is the resolved source URL, empty before a source loads.
	CurrentSrc() string

	// Imperative control surface, used by the playback service only.
	Play() error
	Pause()
	Seek(seconds float64)
	SetVolume(level float64)
	SetMuted(muted bool)
	SetPlaybackRate(rate float64)
	RequestFullscreen() error
	ExitFullscreen()
	EnterPictureInPicture() error
	ExitPictureInPicture()
}

// StreamingEngine is a live handle to an adaptive-bitrate engine bound to
// a media element. Absent on the native playback path.
type StreamingEngine interface {
	// BandwidthEstimate returns the current estimate in bits per second.
	// May be NaN before the estimator warms up.
	BandwidthEstimate() float64

	Levels() []domain.QualityLevel
	// CurrentLevel returns the active level index, domain.AutoLevel when
	// the engine selects renditions automatically.
	CurrentLevel() int
	SetCurrentLevel(index int)

	AudioTracks() []domain.MediaTrack
	CurrentAudioTrack() int
	SetAudioTrack(index int)

	SubtitleTracks() []domain.MediaTrack
	// CurrentSubtitleTrack returns domain.AutoLevel when subtitles are off.
	CurrentSubtitleTrack() int
	SetSubtitleTrack(index int)

	// Errors delivers engine errors until the engine is destroyed.
	Errors() <-chan domain.EngineError
}
