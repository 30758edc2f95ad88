package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"playhud/internal/core/domain"
)

// sourceSentinel is reported as the source name while the element has no
// resolved source yet (adaptive engines feed the element a manifest).
const sourceSentinel = "manifest.m3u8"

// QualityLabel derives the categorical quality label from the decode
// height. Thresholds are inclusive lower bounds, evaluated highest first,
// so exactly 1080 yields "1080p" and not "2K". Height 0 means metadata
// has not loaded yet.
func QualityLabel(height int) string {
	switch {
	case height >= 2160:
		return "4K"
	case height >= 1440:
		return "2K"
	case height >= 1080:
		return "1080p"
	case height >= 720:
		return "720p"
	case height > 0:
		return strconv.Itoa(height) + "p"
	default:
		return "SD"
	}
}

// NetworkHealth maps a bandwidth estimate in megabits per second to a
// styling tier. An invalid estimate (NaN, infinite, or negative) maps to
// unknown rather than the lowest tier.
func NetworkHealth(megabits float64) domain.NetworkColor {
	switch {
	case math.IsNaN(megabits) || math.IsInf(megabits, 0) || megabits < 0:
		return domain.NetworkUnknown
	case megabits > 5:
		return domain.NetworkGood
	case megabits > 2:
		return domain.NetworkFair
	default:
		return domain.NetworkPoor
	}
}

// BufferAhead computes the seconds of contiguous buffered media ahead of
// the playback cursor: the remainder of the first range containing t.
// This is an interval-containment search, not a sum of all ranges; media
// buffered past a gap does not protect against a stall at the cursor, so
// it does not count.
func BufferAhead(ranges []domain.TimeRange, t float64) float64 {
	for _, r := range ranges {
		if r.Contains(t) {
			if ahead := r.End - t; ahead > 0 {
				return ahead
			}
			return 0
		}
	}
	return 0
}

// FormatDimensions renders a width/height pair as "WxH".
func FormatDimensions(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}

// FormatBuffer renders buffered seconds with one decimal, e.g. "10.0s".
func FormatBuffer(seconds float64) string {
	return fmt.Sprintf("%.1fs", seconds)
}

// FormatBandwidth renders a bits-per-second estimate as megabits with one
// decimal, e.g. "6.5 Mbps".
func FormatBandwidth(bits float64) string {
	return fmt.Sprintf("%.1f Mbps", bits/1e6)
}

// SourceName extracts the display name of the active source: the text
// after the last path separator, or the manifest sentinel when the
// element has no source yet.
func SourceName(src string) string {
	if src == "" {
		return sourceSentinel
	}
	if i := strings.LastIndex(src, "/"); i >= 0 {
		return src[i+1:]
	}
	return src
}
