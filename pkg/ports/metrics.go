package ports

import "time"

// MetricsRecorder receives batch progress measurements.
type MetricsRecorder interface {
	// VideoStarted marks a video entering extraction.
	VideoStarted()

	// VideoDone marks the end of a video started with VideoStarted.
	VideoDone()

	// VideoProcessed records a successfully featurized video.
	VideoProcessed(category string, frames int, elapsed time.Duration)

	// VideoSkipped records a skip marker with its reason code.
	VideoSkipped(category, reason string)
}
