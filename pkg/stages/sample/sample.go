// Package sample implements the frame export stage: it writes a strided,
// resized JPEG sequence of a video into its own directory.
package sample

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/user/motionset/pkg/pipeline"
	"github.com/user/motionset/pkg/ports"
)

// partialSuffix marks a frame directory that is still being written.
const partialSuffix = ".partial"

// Stage exports frames through the shared FrameStream abstraction.
type Stage struct {
	decoder  ports.FrameDecoder
	renderer ports.Renderer
	fs       ports.FileSystem
	logger   ports.Logger
}

// NewStage creates a frame export stage.
func NewStage(decoder ports.FrameDecoder, renderer ports.Renderer, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		decoder:  decoder,
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("sample"),
	}
}

// Execute writes frame_0000.jpg, frame_0001.jpg, ... into input.OutputDir.
// Frames are staged in a sibling directory and renamed into place, so
// OutputDir either holds a complete sequence or does not exist.
func (s *Stage) Execute(ctx context.Context, input pipeline.SampleInput) (pipeline.SampleResult, error) {
	input = withDefaults(input)
	staging := input.OutputDir + partialSuffix

	if err := s.fs.RemoveAll(staging); err != nil {
		return pipeline.SampleResult{}, fmt.Errorf("clear staging dir: %w", err)
	}
	if err := s.fs.MkdirAll(staging); err != nil {
		return pipeline.SampleResult{}, fmt.Errorf("create staging dir: %w", err)
	}

	written, err := s.export(ctx, input, staging)
	if err != nil {
		s.fs.RemoveAll(staging)
		return pipeline.SampleResult{}, err
	}

	if err := s.fs.RemoveAll(input.OutputDir); err != nil {
		s.fs.RemoveAll(staging)
		return pipeline.SampleResult{}, fmt.Errorf("replace frame dir: %w", err)
	}
	if err := s.fs.Rename(staging, input.OutputDir); err != nil {
		s.fs.RemoveAll(staging)
		return pipeline.SampleResult{}, fmt.Errorf("publish frame dir: %w", err)
	}

	s.logger.Debug("Exported %d frames to %s", written, input.OutputDir)
	return pipeline.SampleResult{Dir: input.OutputDir, FramesWritten: written}, nil
}

func (s *Stage) export(ctx context.Context, input pipeline.SampleInput, dir string) (int, error) {
	stream, err := s.decoder.Open(ctx, input.Path, ports.PixelRGB)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	written := 0
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		frame, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("read frame %d: %w", i, err)
		}
		if i%input.Every != 0 {
			continue
		}

		img := s.renderer.ResizeImage(frame.Image(), input.Width, input.Height)
		data, err := s.renderer.EncodeImage(img, ports.FormatJPEG, input.Quality)
		if err != nil {
			return written, fmt.Errorf("encode frame %d: %w", i, err)
		}
		name := fmt.Sprintf("frame_%04d.jpg", written)
		if err := s.fs.WriteFile(filepath.Join(dir, name), data); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written++
	}
	return written, nil
}

func withDefaults(in pipeline.SampleInput) pipeline.SampleInput {
	d := pipeline.DefaultSampleInput()
	if in.Width <= 0 {
		in.Width = d.Width
	}
	if in.Height <= 0 {
		in.Height = d.Height
	}
	if in.Quality <= 0 {
		in.Quality = d.Quality
	}
	if in.Every <= 0 {
		in.Every = d.Every
	}
	return in
}

var _ pipeline.Sampler = (*Stage)(nil)
