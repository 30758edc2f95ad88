package utils

import "time"

// Now is the clock used when stamping sessions and snapshots. Tests
// may swap it for a fixed clock.
var Now = time.Now

// Since measures elapsed time against the package clock.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}
