package domain

import "time"

type SessionID string
type UserID string

// PlayerSession is one monitored playback surface. A session may exist
// before any media element is attached; the sampler only runs while an
// element handle is present.
type PlayerSession struct {
	ID        SessionID `json:"id"`
	Label     string    `json:"label"`
	Owner     UserID    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Degraded is set when the engine reported a fatal error and was
	// detached; native playback may continue without engine telemetry.
	Degraded bool `json:"degraded"`

	HasMedia  bool `json:"has_media"`
	HasEngine bool `json:"has_engine"`
}
