// Package promrecorder exposes dataset build progress as Prometheus metrics.
package promrecorder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/user/motionset/pkg/ports"
)

// Recorder implements ports.MetricsRecorder on a Prometheus registry.
type Recorder struct {
	processed *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	duration  prometheus.Histogram
	frames    prometheus.Counter
	inFlight  prometheus.Gauge
}

// New registers the motionset metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		processed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "motionset_videos_processed_total",
			Help: "Videos featurized successfully, by category",
		}, []string{"category"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "motionset_videos_skipped_total",
			Help: "Videos skipped, by category and reason",
		}, []string{"category", "reason"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "motionset_extraction_duration_seconds",
			Help:    "Wall time spent extracting features from one video",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		frames: f.NewCounter(prometheus.CounterOpts{
			Name: "motionset_frames_decoded_total",
			Help: "Frames decoded across all processed videos",
		}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "motionset_videos_in_flight",
			Help: "Videos currently being extracted",
		}),
	}
}

// VideoStarted increments the in-flight gauge.
func (r *Recorder) VideoStarted() {
	r.inFlight.Inc()
}

// VideoDone decrements the in-flight gauge.
func (r *Recorder) VideoDone() {
	r.inFlight.Dec()
}

// VideoProcessed records a featurized video.
func (r *Recorder) VideoProcessed(category string, frames int, elapsed time.Duration) {
	r.processed.WithLabelValues(category).Inc()
	r.frames.Add(float64(frames))
	r.duration.Observe(elapsed.Seconds())
}

// VideoSkipped records a skip marker.
func (r *Recorder) VideoSkipped(category, reason string) {
	r.skipped.WithLabelValues(category, reason).Inc()
}

var _ ports.MetricsRecorder = (*Recorder)(nil)
