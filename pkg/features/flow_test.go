package features

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/user/motionset/pkg/mocks"
	"github.com/user/motionset/pkg/ports"
)

// texturedVideo renders a smooth pattern that moves shift pixels to the
// right on every frame.
func texturedVideo(n, w, h, shift int) mocks.Video {
	v := mocks.Video{Width: w, Height: h}
	for f := 0; f < n; f++ {
		p := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				fx := float64(x - f*shift)
				val := 128 + 50*math.Sin(fx/5) + 40*math.Cos(float64(y)/6)
				p[y*w+x] = byte(math.Round(val))
			}
		}
		v.Planes = append(v.Planes, p)
	}
	return v
}

func TestDenseFlow_StaticFrames(t *testing.T) {
	v := texturedVideo(1, 40, 32, 0)
	u, vv := DenseFlow(v.Planes[0], v.Planes[0], 40, 32, DefaultFlowParams())
	if got := MeanMagnitude(u, vv); got != 0 {
		t.Errorf("expected zero flow for identical frames, got %v", got)
	}
}

func TestDenseFlow_HorizontalShift(t *testing.T) {
	v := texturedVideo(2, 64, 48, 1)
	u, vv := DenseFlow(v.Planes[0], v.Planes[1], 64, 48, DefaultFlowParams())

	// Measure away from the clamped borders.
	var sumU, sumV float64
	n := 0
	for y := 10; y < 38; y++ {
		for x := 10; x < 54; x++ {
			sumU += u[y*64+x]
			sumV += vv[y*64+x]
			n++
		}
	}
	meanU, meanV := sumU/float64(n), sumV/float64(n)
	if meanU < 0.5 || meanU > 1.5 {
		t.Errorf("expected horizontal flow near 1, got %v", meanU)
	}
	if math.Abs(meanV) > 0.5 {
		t.Errorf("expected vertical flow near 0, got %v", meanV)
	}
}

func TestFlowExtractor_Stride(t *testing.T) {
	v := texturedVideo(5, 32, 32, 1)
	f := NewFlowExtractor(FlowParams{Stride: 2}, nil)
	for i, p := range v.Planes {
		f.Observe(&ports.Frame{Index: i, Width: 32, Height: 32, Pix: p})
	}
	// Four pairs, every second one scored.
	if got := len(f.Series()); got != 2 {
		t.Errorf("expected 2 scores with stride 2, got %d", got)
	}
}

func TestFlowExtractor_Downscale(t *testing.T) {
	v := texturedVideo(2, 64, 64, 2)
	f := NewFlowExtractor(FlowParams{Downscale: 2}, nil)
	for i, p := range v.Planes {
		f.Observe(&ports.Frame{Index: i, Width: 64, Height: 64, Pix: p})
	}
	s := f.Stats()
	if s.Count != 1 {
		t.Fatalf("expected one score, got %d", s.Count)
	}
	if s.Mean <= 0 {
		t.Errorf("expected positive flow in source pixels, got %v", s.Mean)
	}
}

type fixedEstimator struct {
	u, v  float64
	err   error
	calls int
}

func (e *fixedEstimator) Name() string { return "fixed" }

func (e *fixedEstimator) Estimate(prev, next []byte, w, h int, params FlowParams) ([]float64, []float64, error) {
	e.calls++
	if e.err != nil {
		return nil, nil, e.err
	}
	u, v := make([]float64, w*h), make([]float64, w*h)
	for i := range u {
		u[i], v[i] = e.u, e.v
	}
	return u, v, nil
}

func TestFlowExtractor_Estimator(t *testing.T) {
	est := &fixedEstimator{u: 3, v: 4}
	f := NewFlowExtractor(FlowParams{Downscale: 2}, est)
	for i := 0; i < 3; i++ {
		if err := f.Observe(&ports.Frame{Index: i, Width: 16, Height: 16, Pix: make([]byte, 256)}); err != nil {
			t.Fatalf("Observe failed: %v", err)
		}
	}
	if est.calls != 2 {
		t.Errorf("expected 2 estimates, got %d", est.calls)
	}
	// Magnitude 5 at half resolution is 10 source pixels.
	if s := f.Stats(); s.Mean != 10 || s.Max != 10 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestExtract_EstimatorError(t *testing.T) {
	est := &fixedEstimator{err: errors.New("solver failed")}
	_, err := Extract(context.Background(), mocks.NewStream(mocks.ConstantVideo(3, 8, 8, 1)), Default, Options{FlowEstimator: est})
	if err == nil || !strings.Contains(err.Error(), "fixed flow: solver failed") {
		t.Errorf("expected estimator error, got %v", err)
	}
}

func TestFlowPreset(t *testing.T) {
	for _, name := range []string{"fast", "standard", "accurate", ""} {
		if _, err := FlowPreset(name); err != nil {
			t.Errorf("FlowPreset(%q) failed: %v", name, err)
		}
	}
	if _, err := FlowPreset("turbo"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestFlowParams_Normalized(t *testing.T) {
	p := FlowParams{WinSize: 10}.normalized()
	if p.WinSize != 11 {
		t.Errorf("expected odd window 11, got %d", p.WinSize)
	}
	if p.Levels != 3 || p.Iterations != 3 || p.Downscale != 1 || p.Stride != 1 {
		t.Errorf("unexpected defaults %+v", p)
	}
}
