package ports

// SeriesDump holds the per-frame scores computed for one video.
type SeriesDump struct {
	VideoID  string    `json:"video_id"`
	Category string    `json:"category,omitempty"`
	Motion   []float64 `json:"motion"`
	Flow     []float64 `json:"flow"`
}

// DebugSink abstracts debug output for intermediate results.
// It allows saving per-frame score series for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveSeries stores the motion and flow series of one video.
	SaveSeries(dump SeriesDump) error
}
