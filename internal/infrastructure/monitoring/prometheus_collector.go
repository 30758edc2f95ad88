package monitoring

import (
	"strconv"
	"strings"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exports per-session playback telemetry. It
// implements ports.SnapshotObserver, so every published snapshot flows
// straight into the gauges.
type PrometheusCollector struct {
	sessionsActiveTotal prometheus.Gauge
	samplesTotal        *prometheus.CounterVec

	bufferSeconds *prometheus.GaugeVec
	bitrateBps    *prometheus.GaugeVec
	droppedFrames *prometheus.GaugeVec
	networkTier   *prometheus.GaugeVec
	decodeHeight  *prometheus.GaugeVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		sessionsActiveTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "playhud_sessions_active_total",
			Help: "Total number of monitored playback sessions",
		}),

		samplesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "playhud_samples_total",
			Help: "Total number of telemetry samples published",
		}, []string{"session_id"}),

		bufferSeconds: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "playhud_buffer_seconds",
			Help: "Seconds of contiguous media buffered ahead of the playback cursor",
		}, []string{"session_id"}),

		bitrateBps: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "playhud_bitrate_bps",
			Help: "Estimated bandwidth in bits per second",
		}, []string{"session_id"}),

		droppedFrames: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "playhud_dropped_frames",
			Help: "Cumulative dropped video frames",
		}, []string{"session_id"}),

		networkTier: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "playhud_network_tier",
			Help: "Network health tier (0 unknown, 1 poor, 2 fair, 3 good)",
		}, []string{"session_id"}),

		decodeHeight: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "playhud_decode_height_pixels",
			Help: "Vertical decode resolution in pixels",
		}, []string{"session_id"}),
	}
}

var _ ports.SnapshotObserver = (*PrometheusCollector)(nil)

// ObserveSnapshot exports one published snapshot.
func (p *PrometheusCollector) ObserveSnapshot(stats domain.VideoStats) {
	id := string(stats.SessionID)

	p.samplesTotal.WithLabelValues(id).Inc()
	p.bufferSeconds.WithLabelValues(id).Set(parseSeconds(stats.Buffer))
	p.bitrateBps.WithLabelValues(id).Set(stats.Bitrate)
	p.droppedFrames.WithLabelValues(id).Set(float64(stats.DroppedFrames))
	p.networkTier.WithLabelValues(id).Set(networkTierValue(stats.NetworkColor))
	p.decodeHeight.WithLabelValues(id).Set(parseHeight(stats.Resolution))
}

func (p *PrometheusCollector) RecordSessionCreated(id domain.SessionID) {
	p.sessionsActiveTotal.Inc()
}

// RecordSessionClosed drops the closed session's label series so the
// scrape surface does not grow without bound.
func (p *PrometheusCollector) RecordSessionClosed(id domain.SessionID) {
	p.sessionsActiveTotal.Dec()

	labels := string(id)
	p.samplesTotal.DeleteLabelValues(labels)
	p.bufferSeconds.DeleteLabelValues(labels)
	p.bitrateBps.DeleteLabelValues(labels)
	p.droppedFrames.DeleteLabelValues(labels)
	p.networkTier.DeleteLabelValues(labels)
	p.decodeHeight.DeleteLabelValues(labels)
}

func networkTierValue(color domain.NetworkColor) float64 {
	switch color {
	case domain.NetworkGood:
		return 3
	case domain.NetworkFair:
		return 2
	case domain.NetworkPoor:
		return 1
	default:
		return 0
	}
}

// parseSeconds reads the display form "10.0s" back into a float.
func parseSeconds(buffer string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(buffer, "s"), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseHeight reads the "WxH" display form and returns H.
func parseHeight(resolution string) float64 {
	_, h, found := strings.Cut(resolution, "x")
	if !found {
		return 0
	}
	v, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return 0
	}
	return v
}
