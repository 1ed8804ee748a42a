package features

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/user/motionset/pkg/ports"
)

// ErrNoFrames is returned when a stream ends before yielding any frame.
var ErrNoFrames = errors.New("features: no decodable frames")

// Options configures a fused extraction pass.
type Options struct {
	Flow FlowParams
	// FlowEstimator computes dense flow; nil selects LucasKanade.
	FlowEstimator FlowEstimator
	// MaxFrames stops reading after this many frames when positive.
	MaxFrames int
}

// Result is the outcome of one extraction pass over a video.
type Result struct {
	Vector     Vector
	FrameCount int
	Motion     Stats
	Flow       Stats
	// MotionSeries and FlowSeries keep the per-pair scores.
	MotionSeries []float64
	FlowSeries   []float64
	// LowConfidence marks vectors computed from empty series.
	LowConfidence bool
}

// Extract reads stream to its end once, feeding every frame to both the
// motion and flow extractors, and returns the vector in schema order.
// The caller owns the stream and must close it.
func Extract(ctx context.Context, stream ports.FrameStream, schema Schema, opts Options) (Result, error) {
	motion := NewMotionExtractor()
	flow := NewFlowExtractor(opts.Flow, opts.FlowEstimator)

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if opts.MaxFrames > 0 && count >= opts.MaxFrames {
			break
		}
		frame, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read frame %d: %w", count, err)
		}
		if frame.Format != ports.PixelGray {
			return Result{}, fmt.Errorf("frame %d: expected gray pixels, got %s", count, frame.Format)
		}
		motion.Observe(frame)
		if err := flow.Observe(frame); err != nil {
			return Result{}, fmt.Errorf("frame %d: %w", count, err)
		}
		count++
	}

	if count == 0 {
		return Result{}, ErrNoFrames
	}

	ms, fs := motion.Stats(), flow.Stats()
	vec, err := schema.NewVector(map[string]float64{
		MeanMotion: ms.Mean,
		MaxMotion:  ms.Max,
		StdMotion:  ms.Std,
		MeanFlow:   fs.Mean,
		MaxFlow:    fs.Max,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Vector:        vec,
		FrameCount:    count,
		Motion:        ms,
		Flow:          fs,
		MotionSeries:  motion.Series(),
		FlowSeries:    flow.Series(),
		LowConfidence: ms.Empty() || fs.Empty(),
	}, nil
}
