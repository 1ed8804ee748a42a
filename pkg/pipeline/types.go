package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/ports"
)

// =============================================================================
// Extract Stage Types
// =============================================================================

// ExtractInput identifies one video to featurize.
type ExtractInput struct {
	Path     string
	VideoID  string
	Category string
}

// VideoID is the file name of path without its extension. Dataset rows,
// artifacts and single-video output all key videos by it.
func VideoID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExtractResult is the fused motion and flow pass over one video.
type ExtractResult struct {
	Vector        features.Vector
	FrameCount    int
	LowConfidence bool
	Info          ports.StreamInfo
	MotionSeries  []float64
	FlowSeries    []float64
}

// =============================================================================
// Sample Stage Types
// =============================================================================

// SampleInput describes a frame export for one video.
type SampleInput struct {
	Path string
	// OutputDir receives frame_0000.jpg, frame_0001.jpg, ...
	OutputDir string
	Width     int
	Height    int
	Quality   int // JPEG quality (1-100)
	Every     int // keep every Nth decoded frame
}

// DefaultSampleInput returns SampleInput with default values.
func DefaultSampleInput() SampleInput {
	return SampleInput{
		Width:   224,
		Height:  224,
		Quality: 90,
		Every:   1,
	}
}

// SampleResult reports the exported frames.
type SampleResult struct {
	Dir           string
	FramesWritten int
}
