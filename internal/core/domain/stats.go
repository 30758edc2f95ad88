package domain

import "time"

// NetworkColor is a UI styling hint derived from the bandwidth estimate,
// not a raw metric.
type NetworkColor string

const (
	NetworkGood    NetworkColor = "good"
	NetworkFair    NetworkColor = "fair"
	NetworkPoor    NetworkColor = "poor"
	NetworkUnknown NetworkColor = "unknown"
)

// VideoStats is one immutable telemetry snapshot published by the sampler.
// Every field is derivable from a single reading of the media element and
// engine handles; snapshots are replaced wholesale, never mutated in place.
type VideoStats struct {
	SessionID     SessionID    `json:"session_id"`
	URL           string       `json:"url"`
	Resolution    string       `json:"resolution"`
	Viewport      string       `json:"viewport"`
	Buffer        string       `json:"buffer"`
	Bandwidth     string       `json:"bandwidth"`
	DroppedFrames uint64       `json:"droppedFrames"`
	QualityLabel  string       `json:"qualityLabel"`
	NetworkColor  NetworkColor `json:"networkColor"`
	Bitrate       float64      `json:"bitrate"`
	SampledAt     time.Time    `json:"sampled_at"`
}

// DefaultVideoStats is the snapshot consumers observe before the sampler
// has produced its first tick.
func DefaultVideoStats(sessionID SessionID) VideoStats {
	return VideoStats{
		SessionID:    sessionID,
		URL:          "N/A",
		Resolution:   "0x0",
		Viewport:     "0x0",
		Buffer:       "0.0s",
		Bandwidth:    "0.0 Mbps",
		QualityLabel: "SD",
		NetworkColor: NetworkUnknown,
	}
}
