package domain

// TimeRange is a contiguous span of buffered playback time, in seconds.
// The media element reports a set of disjoint ranges in arbitrary order.
type TimeRange struct {
	Start float64
	End   float64
}

// Contains reports whether t falls inside the range. Bounds are inclusive.
func (r TimeRange) Contains(t float64) bool {
	return r.Start <= t && t <= r.End
}

// PlaybackQuality mirrors the decode pipeline's quality reporting facility.
// DroppedVideoFrames is cumulative for the lifetime of the media element.
type PlaybackQuality struct {
	DroppedVideoFrames uint64
	TotalVideoFrames   uint64
}

// QualityLevel is one rendition entry exposed by the streaming engine.
type QualityLevel struct {
	ID      int    `json:"id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Bitrate int    `json:"bitrate"` // bits per second
	Codec   string `json:"codec,omitempty"`
}

// MediaTrack is an audio or subtitle track exposed by the streaming engine.
type MediaTrack struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
}

// AutoLevel selects automatic quality switching; for subtitle tracks the
// same index means "off".
const AutoLevel = -1

// EngineErrorKind classifies errors surfaced by the streaming engine.
type EngineErrorKind string

const (
	EngineErrorNetwork EngineErrorKind = "network"
	EngineErrorMedia   EngineErrorKind = "media"
	EngineErrorOther   EngineErrorKind = "other"
)

// EngineError is one entry from the engine's error channel. Non-fatal
// errors are recoverable by the engine itself; fatal errors mean the
// engine handle is no longer usable.
type EngineError struct {
	Kind   EngineErrorKind
	Detail string
	Fatal  bool
}

func (e EngineError) Error() string {
	if e.Fatal {
		return "fatal " + string(e.Kind) + " error: " + e.Detail
	}
	return string(e.Kind) + " error: " + e.Detail
}
