package services

import (
	"math"
	"testing"

	"playhud/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestQualityLabel(t *testing.T) {
	tests := []struct {
		name   string
		height int
		want   string
	}{
		{"metadata not loaded", 0, "SD"},
		{"below hd threshold", 719, "719p"},
		{"exactly hd", 720, "720p"},
		{"just below full hd", 1079, "720p"},
		{"exactly full hd", 1080, "1080p"},
		{"between full hd and 2k", 1439, "1080p"},
		{"exactly 2k", 1440, "2K"},
		{"just below 4k", 2159, "2K"},
		{"exactly 4k", 2160, "4K"},
		{"above 4k", 4320, "4K"},
		{"small rendition", 240, "240p"},
		{"negative height", -1, "SD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualityLabel(tt.height))
		})
	}
}

func TestNetworkHealth(t *testing.T) {
	tests := []struct {
		name     string
		megabits float64
		want     domain.NetworkColor
	}{
		{"fast connection", 10, domain.NetworkGood},
		{"just above good threshold", 5.1, domain.NetworkGood},
		{"exactly five is fair", 5, domain.NetworkFair},
		{"mid tier", 3, domain.NetworkFair},
		{"exactly two is poor", 2, domain.NetworkPoor},
		{"slow connection", 0.5, domain.NetworkPoor},
		{"zero estimate", 0, domain.NetworkPoor},
		{"nan estimate", math.NaN(), domain.NetworkUnknown},
		{"infinite estimate", math.Inf(1), domain.NetworkUnknown},
		{"negative estimate", -1, domain.NetworkUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NetworkHealth(tt.megabits))
		})
	}
}

func TestBufferAhead(t *testing.T) {
	ranges := []domain.TimeRange{
		{Start: 0, End: 5},
		{Start: 8, End: 20},
	}

	tests := []struct {
		name   string
		ranges []domain.TimeRange
		t      float64
		want   float64
	}{
		{"inside second range", ranges, 10, 10},
		{"in the gap between ranges", ranges, 6, 0},
		{"near end of range", ranges, 19.5, 0.5},
		{"at exact range end", ranges, 5, 0},
		{"at range start", ranges, 8, 12},
		{"no ranges at all", nil, 3, 0},
		{"past all ranges", ranges, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BufferAhead(tt.ranges, tt.t), 1e-9)
		})
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1920x1080", FormatDimensions(1920, 1080))
	assert.Equal(t, "0x0", FormatDimensions(0, 0))
	assert.Equal(t, "10.0s", FormatBuffer(10))
	assert.Equal(t, "0.5s", FormatBuffer(0.5))
	assert.Equal(t, "6.5 Mbps", FormatBandwidth(6_500_000))
	assert.Equal(t, "0.0 Mbps", FormatBandwidth(0))
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty source uses sentinel", "", "manifest.m3u8"},
		{"full url", "https://cdn.example.com/live/show.m3u8", "show.m3u8"},
		{"bare file name", "clip.mp4", "clip.mp4"},
		{"trailing slash", "https://cdn.example.com/live/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceName(tt.src))
		})
	}
}
