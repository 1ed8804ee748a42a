package features

import "github.com/user/motionset/pkg/ports"

// MeanAbsDiff returns the mean absolute difference of two equally sized
// 8-bit planes.
func MeanAbsDiff(a, b []byte) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var sum uint64
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += uint64(d)
	}
	return float64(sum) / float64(len(a))
}

// MotionExtractor scores the pixel change between consecutive grayscale
// frames.
type MotionExtractor struct {
	prev   *ports.Frame
	scores []float64
}

// NewMotionExtractor creates an extractor with an empty series.
func NewMotionExtractor() *MotionExtractor {
	return &MotionExtractor{}
}

// Observe feeds the next frame. A frame whose size differs from the
// previous one restarts the pairing without producing a score.
func (m *MotionExtractor) Observe(f *ports.Frame) {
	if m.prev != nil && sameShape(m.prev, f) {
		m.scores = append(m.scores, MeanAbsDiff(m.prev.Pix, f.Pix))
	}
	m.prev = f
}

// Series returns the per-pair scores observed so far.
func (m *MotionExtractor) Series() []float64 {
	return m.scores
}

// Stats summarizes the series.
func (m *MotionExtractor) Stats() Stats {
	return Summarize(m.scores)
}

func sameShape(a, b *ports.Frame) bool {
	return a.Width == b.Width && a.Height == b.Height && len(a.Pix) == len(b.Pix)
}
