// Package ffmpegdecoder decodes video files into raw frame streams by piping
// them through an ffmpeg subprocess.
package ffmpegdecoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/motionset/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg or ffprobe cannot be located.
	ErrFFmpegNotFound = errors.New("ffmpegdecoder: ffmpeg not found")
)

// Options configures a Decoder.
type Options struct {
	// FFmpegPath and FFprobePath override binary discovery when set.
	FFmpegPath  string
	FFprobePath string
	// Probers are consulted in order before falling back to ffprobe.
	Probers []ports.ContainerProber
}

// Decoder implements ports.FrameDecoder with ffmpeg.
type Decoder struct {
	ffmpegPath string
	probers    []ports.ContainerProber
}

// New locates ffmpeg and ffprobe and returns a decoder.
func New(opts Options) (*Decoder, error) {
	ffmpegPath, err := findBinary("ffmpeg", opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	fallback, err := NewProber(opts.FFprobePath)
	if err != nil {
		return nil, err
	}

	probers := append([]ports.ContainerProber{}, opts.Probers...)
	probers = append(probers, fallback)

	return &Decoder{ffmpegPath: ffmpegPath, probers: probers}, nil
}

// Probe returns the stream properties of path without decoding it. Prober
// errors stay in the chain, so a probe cut short by ctx still matches
// ctx.Err().
func (d *Decoder) Probe(ctx context.Context, path string) (ports.StreamInfo, error) {
	var errs []error
	for _, p := range d.probers {
		if !p.Supports(path) {
			continue
		}
		info, err := p.Probe(ctx, path)
		if err == nil && info.Width > 0 && info.Height > 0 {
			return info, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return ports.StreamInfo{}, fmt.Errorf("%w: %s: no video stream", ports.ErrUnreadableSource, path)
	}
	return ports.StreamInfo{}, fmt.Errorf("%w: %s: %w", ports.ErrUnreadableSource, path, errors.Join(errs...))
}

// Open starts an ffmpeg process emitting raw frames of path.
func (d *Decoder) Open(ctx context.Context, path string, format ports.PixelFormat) (ports.FrameStream, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrUnreadableSource, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ports.ErrUnreadableSource, path)
	}

	info, err := d.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath, decodeArgs(path, info, format)...)
	s := &stream{
		ctx:       ctx,
		cmd:       cmd,
		info:      info,
		format:    format,
		frameSize: info.Width * info.Height * format.Channels(),
	}
	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	s.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ports.ErrUnreadableSource, err)
	}

	return s, nil
}

// decodeArgs scales the output to the probed size so every frame read from
// the pipe is exactly Width*Height*Channels bytes, even when the container
// header disagrees with the coded size.
func decodeArgs(path string, info ports.StreamInfo, format ports.PixelFormat) []string {
	return []string{
		"-v", "error",
		"-nostdin",
		"-noautorotate",
		"-i", path,
		"-map", "0:v:0",
		"-vf", fmt.Sprintf("scale=%d:%d", info.Width, info.Height),
		"-f", "rawvideo",
		"-pix_fmt", format.String(),
		"pipe:1",
	}
}

// stream reads fixed-size raw frames from ffmpeg's stdout.
type stream struct {
	ctx       context.Context
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    bytes.Buffer
	info      ports.StreamInfo
	format    ports.PixelFormat
	frameSize int
	index     int
	done      bool

	waitOnce sync.Once
	waitErr  error
	closed   bool
}

func (s *stream) Info() ports.StreamInfo {
	return s.info
}

func (s *stream) Next() (*ports.Frame, error) {
	if s.closed {
		return nil, io.ErrClosedPipe
	}
	if s.done {
		return nil, io.EOF
	}

	buf := make([]byte, s.frameSize)
	if _, err := io.ReadFull(s.stdout, buf); err == nil {
		frame := &ports.Frame{
			Index:  s.index,
			Width:  s.info.Width,
			Height: s.info.Height,
			Format: s.format,
			Pix:    buf,
		}
		s.index++
		return frame, nil
	}

	// Output ended: either a clean EOF, a truncated tail or a killed process.
	s.done = true
	waitErr := s.wait()

	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	if s.index == 0 && waitErr != nil {
		return nil, fmt.Errorf("%w: ffmpeg decode failed: %v\nstderr: %s",
			ports.ErrUnreadableSource, waitErr, strings.TrimSpace(s.stderr.String()))
	}
	return nil, io.EOF
}

func (s *stream) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.done && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	s.wait()
	return nil
}

var (
	_ ports.FrameDecoder = (*Decoder)(nil)
	_ ports.FrameStream  = (*stream)(nil)
)
