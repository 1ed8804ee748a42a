// Package extract implements the fused motion and optical-flow extraction stage.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/pipeline"
	"github.com/user/motionset/pkg/ports"
)

// Stage opens a video, runs one extraction pass and releases the decoder.
type Stage struct {
	decoder ports.FrameDecoder
	schema  features.Schema
	opts    features.Options
	timeout time.Duration
	sink    ports.DebugSink
	logger  ports.Logger
}

// NewStage creates an extraction stage. A zero timeout disables the
// per-video deadline.
func NewStage(
	decoder ports.FrameDecoder,
	schema features.Schema,
	opts features.Options,
	timeout time.Duration,
	sink ports.DebugSink,
	logger ports.Logger,
) *Stage {
	return &Stage{
		decoder: decoder,
		schema:  schema,
		opts:    opts,
		timeout: timeout,
		sink:    sink,
		logger:  logger.WithComponent("extract"),
	}
}

// Schema returns the schema of the vectors this stage produces.
func (s *Stage) Schema() features.Schema {
	return s.schema
}

// Execute featurizes input.Path. A video that yields no frames fails with
// an error matching both ports.ErrUnreadableSource and features.ErrNoFrames.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	stream, err := s.decoder.Open(ctx, input.Path, ports.PixelGray)
	if err != nil {
		return pipeline.ExtractResult{}, err
	}
	defer stream.Close()

	info := stream.Info()
	s.logger.Debug("Decoding %s (%dx%d, %d frames declared)", input.Path, info.Width, info.Height, info.FrameCount)

	res, err := features.Extract(ctx, stream, s.schema, s.opts)
	if errors.Is(err, features.ErrNoFrames) {
		return pipeline.ExtractResult{}, fmt.Errorf("%w: %s: %w", ports.ErrUnreadableSource, input.Path, err)
	}
	if err != nil {
		return pipeline.ExtractResult{}, err
	}

	s.logger.Debug("Extracted %s: %d frames, mean motion %.3f, mean flow %.3f",
		input.VideoID, res.FrameCount, res.Motion.Mean, res.Flow.Mean)

	if s.sink.Enabled() {
		dump := ports.SeriesDump{
			VideoID:  input.VideoID,
			Category: input.Category,
			Motion:   res.MotionSeries,
			Flow:     res.FlowSeries,
		}
		if err := s.sink.SaveSeries(dump); err != nil {
			s.logger.Warn("Failed to save debug series for %s: %v", input.VideoID, err)
		}
	}

	return pipeline.ExtractResult{
		Vector:        res.Vector,
		FrameCount:    res.FrameCount,
		LowConfidence: res.LowConfidence,
		Info:          info,
		MotionSeries:  res.MotionSeries,
		FlowSeries:    res.FlowSeries,
	}, nil
}

var _ pipeline.Extractor = (*Stage)(nil)
