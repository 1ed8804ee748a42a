package features

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/user/motionset/pkg/mocks"
	"github.com/user/motionset/pkg/ports"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Mean != 5 || s.Max != 9 || s.Std != 2 || s.Count != 8 {
		t.Errorf("unexpected stats %+v", s)
	}

	if neg := Summarize([]float64{-3, -1, -2}); neg.Max != -1 {
		t.Errorf("expected peak -1 for a negative series, got %v", neg.Max)
	}

	empty := Summarize(nil)
	if !empty.Empty() || empty.Mean != 0 || empty.Max != 0 || empty.Std != 0 {
		t.Errorf("expected zero stats for empty series, got %+v", empty)
	}
}

func TestMeanAbsDiff(t *testing.T) {
	if got := MeanAbsDiff([]byte{0, 10, 20}, []byte{10, 0, 20}); math.Abs(got-20.0/3) > 1e-12 {
		t.Errorf("expected 6.667, got %v", got)
	}
	if got := MeanAbsDiff([]byte{1}, []byte{1, 2}); got != 0 {
		t.Errorf("expected 0 for mismatched planes, got %v", got)
	}
}

func TestExtract_ConstantVideo(t *testing.T) {
	stream := mocks.NewStream(mocks.ConstantVideo(10, 32, 24, 128))

	res, err := Extract(context.Background(), stream, Default, Options{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if res.FrameCount != 10 {
		t.Errorf("expected 10 frames, got %d", res.FrameCount)
	}
	for _, name := range Default.Columns() {
		if v, _ := res.Vector.Get(name); v != 0 {
			t.Errorf("%s: expected 0, got %v", name, v)
		}
	}
	if res.LowConfidence {
		t.Error("constant video with 10 frames should not be low confidence")
	}
	if len(res.MotionSeries) != 9 || len(res.FlowSeries) != 9 {
		t.Errorf("expected 9 pair scores, got %d motion, %d flow", len(res.MotionSeries), len(res.FlowSeries))
	}
}

func TestExtract_AlternatingVideo(t *testing.T) {
	stream := mocks.NewStream(mocks.AlternatingVideo(4, 16, 16, 0, 100))

	res, err := Extract(context.Background(), stream, Default, Options{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	v := res.Vector.Values()
	if v[0] != 100 || v[1] != 100 || v[2] != 0 {
		t.Errorf("expected motion stats 100/100/0, got %v", v[:3])
	}
	// Uniform frames have no gradients, so no flow is resolved.
	if v[3] != 0 || v[4] != 0 {
		t.Errorf("expected zero flow on flat frames, got %v", v[3:])
	}
}

func TestExtract_SingleFrame(t *testing.T) {
	stream := mocks.NewStream(mocks.ConstantVideo(1, 8, 8, 10))

	res, err := Extract(context.Background(), stream, Default, Options{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !res.LowConfidence {
		t.Error("single-frame video should be low confidence")
	}
	for _, x := range res.Vector.Values() {
		if x != 0 {
			t.Errorf("expected zero fallback, got %v", res.Vector.Values())
			break
		}
	}
}

func TestExtract_NoFrames(t *testing.T) {
	stream := mocks.NewStream(mocks.Video{Width: 8, Height: 8})

	_, err := Extract(context.Background(), stream, Default, Options{})
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}

func TestExtract_StreamError(t *testing.T) {
	v := mocks.ConstantVideo(5, 8, 8, 0)
	v.FailAfter = 2
	v.Err = errors.New("boom")

	_, err := Extract(context.Background(), mocks.NewStream(v), Default, Options{})
	if err == nil || !errors.Is(err, v.Err) {
		t.Errorf("expected wrapped stream error, got %v", err)
	}
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, mocks.NewStream(mocks.ConstantVideo(3, 8, 8, 0)), Default, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExtract_SchemaMismatch(t *testing.T) {
	other := NewSchema("other", 1, MeanMotion, MaxMotion)

	_, err := Extract(context.Background(), mocks.NewStream(mocks.ConstantVideo(3, 8, 8, 0)), other, Options{})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	video := texturedVideo(4, 48, 40, 1)

	a, err := Extract(context.Background(), mocks.NewStream(video), Default, Options{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	b, err := Extract(context.Background(), mocks.NewStream(video), Default, Options{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	av, bv := a.Vector.Values(), b.Vector.Values()
	for i := range av {
		if av[i] != bv[i] {
			t.Errorf("column %d differs between runs: %v vs %v", i, av[i], bv[i])
		}
	}
}

func TestExtract_MaxFrames(t *testing.T) {
	res, err := Extract(context.Background(), mocks.NewStream(mocks.ConstantVideo(10, 8, 8, 0)), Default, Options{MaxFrames: 4})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if res.FrameCount != 4 {
		t.Errorf("expected 4 frames, got %d", res.FrameCount)
	}
}

func TestMotionExtractor_ResolutionChange(t *testing.T) {
	m := NewMotionExtractor()
	m.Observe(&ports.Frame{Width: 2, Height: 1, Pix: []byte{0, 0}})
	m.Observe(&ports.Frame{Width: 1, Height: 1, Pix: []byte{50}})
	m.Observe(&ports.Frame{Width: 1, Height: 1, Pix: []byte{60}})

	if got := m.Series(); len(got) != 1 || got[0] != 10 {
		t.Errorf("expected single score 10, got %v", got)
	}
}

func noiseVideo(seed int64, n, w, h int) mocks.Video {
	rng := rand.New(rand.NewSource(seed))
	v := mocks.Video{Width: w, Height: h}
	for f := 0; f < n; f++ {
		p := make([]byte, w*h)
		rng.Read(p)
		v.Planes = append(v.Planes, p)
	}
	return v
}

// flickerVideo is a horizontal gradient whose brightness jumps by ±amp on
// alternate frames.
func flickerVideo(n, w, h, amp int) mocks.Video {
	v := mocks.Video{Width: w, Height: h}
	for f := 0; f < n; f++ {
		off := amp
		if f%2 == 1 {
			off = -amp
		}
		p := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p[y*w+x] = byte(40 + x*160/w + off)
			}
		}
		v.Planes = append(v.Planes, p)
	}
	return v
}

func TestExtract_StatisticOrdering(t *testing.T) {
	videos := []struct {
		name  string
		video mocks.Video
	}{
		{"noise", noiseVideo(1, 32, 24, 6)},
		{"noise other seed", noiseVideo(42, 24, 24, 4)},
		{"textured shift", texturedVideo(5, 40, 32, 2)},
		{"flicker", flickerVideo(6, 32, 32, 3)},
		{"alternating", mocks.AlternatingVideo(5, 16, 16, 20, 200)},
		{"single frame", mocks.ConstantVideo(1, 8, 8, 90)},
	}

	for _, preset := range []string{"fast", "standard", "accurate"} {
		params, err := FlowPreset(preset)
		if err != nil {
			t.Fatal(err)
		}
		for _, tt := range videos {
			t.Run(preset+"/"+tt.name, func(t *testing.T) {
				res, err := Extract(context.Background(), mocks.NewStream(tt.video), Default, Options{Flow: params})
				if err != nil {
					t.Fatalf("Extract failed: %v", err)
				}
				if !res.Vector.Finite() {
					t.Fatalf("non-finite vector %v", res.Vector.Values())
				}
				get := func(name string) float64 {
					v, _ := res.Vector.Get(name)
					return v
				}
				if mean, peak := get(MeanMotion), get(MaxMotion); mean < 0 || peak < mean {
					t.Errorf("motion: want max >= mean >= 0, got max=%v mean=%v", peak, mean)
				}
				if mean, peak := get(MeanFlow), get(MaxFlow); mean < 0 || peak < mean {
					t.Errorf("flow: want max >= mean >= 0, got max=%v mean=%v", peak, mean)
				}
				if std := get(StdMotion); std < 0 {
					t.Errorf("std_motion = %v, want >= 0", std)
				}
			})
		}
	}
}
