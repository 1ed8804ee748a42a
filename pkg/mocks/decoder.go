package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/user/motionset/pkg/ports"
)

// Video is a scripted video: gray planes in presentation order.
type Video struct {
	Width  int
	Height int
	Planes [][]byte
	// FailAfter makes Next return Err after this many frames when Err is set.
	FailAfter int
	Err       error
	// Block makes Next wait for context cancellation instead of returning.
	Block bool
}

// ConstantVideo returns n identical frames filled with value.
func ConstantVideo(n, width, height int, value byte) Video {
	planes := make([][]byte, n)
	for i := range planes {
		p := make([]byte, width*height)
		for j := range p {
			p[j] = value
		}
		planes[i] = p
	}
	return Video{Width: width, Height: height, Planes: planes}
}

// AlternatingVideo returns n frames switching between two fill values.
func AlternatingVideo(n, width, height int, a, b byte) Video {
	v := ConstantVideo(n, width, height, a)
	for i := 1; i < n; i += 2 {
		for j := range v.Planes[i] {
			v.Planes[i][j] = b
		}
	}
	return v
}

// Decoder is a mock implementation of ports.FrameDecoder.
type Decoder struct {
	mu     sync.Mutex
	videos map[string]Video
	opened int
	closed int

	OpenFunc func(ctx context.Context, path string, format ports.PixelFormat) (ports.FrameStream, error)
}

// NewDecoder creates a decoder serving no videos.
func NewDecoder() *Decoder {
	return &Decoder{videos: make(map[string]Video)}
}

// Add registers a scripted video under path.
func (m *Decoder) Add(path string, v Video) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[path] = v
}

// Open returns a stream for a registered path, or ports.ErrUnreadableSource.
func (m *Decoder) Open(ctx context.Context, path string, format ports.PixelFormat) (ports.FrameStream, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, path, format)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such video", ports.ErrUnreadableSource, path)
	}
	m.opened++
	return &Stream{ctx: ctx, video: v, format: format, path: path, onClose: m.streamClosed}, nil
}

func (m *Decoder) streamClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
}

// Counts returns how many streams were opened and closed.
func (m *Decoder) Counts() (opened, closed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened, m.closed
}

// Stream is a mock implementation of ports.FrameStream.
type Stream struct {
	ctx     context.Context
	video   Video
	format  ports.PixelFormat
	path    string
	next    int
	closed  bool
	onClose func()
}

// NewStream wraps a scripted video as a stream without a decoder.
func NewStream(v Video) *Stream {
	return &Stream{ctx: context.Background(), video: v}
}

func (s *Stream) Info() ports.StreamInfo {
	return ports.StreamInfo{
		Source:     s.path,
		Container:  "mock",
		Width:      s.video.Width,
		Height:     s.video.Height,
		FrameCount: len(s.video.Planes),
		FPS:        30,
	}
}

func (s *Stream) Next() (*ports.Frame, error) {
	if s.closed {
		return nil, io.ErrClosedPipe
	}
	if s.video.Block {
		<-s.ctx.Done()
		return nil, s.ctx.Err()
	}
	if s.video.Err != nil && s.next >= s.video.FailAfter {
		return nil, s.video.Err
	}
	if s.next >= len(s.video.Planes) {
		return nil, io.EOF
	}
	plane := s.video.Planes[s.next]
	frame := &ports.Frame{Index: s.next, Width: s.video.Width, Height: s.video.Height, Format: s.format}
	if s.format == ports.PixelRGB {
		frame.Pix = make([]byte, len(plane)*3)
		for i, g := range plane {
			frame.Pix[3*i], frame.Pix[3*i+1], frame.Pix[3*i+2] = g, g, g
		}
	} else {
		frame.Pix = append([]byte(nil), plane...)
	}
	s.next++
	return frame, nil
}

func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.onClose != nil {
		s.onClose()
	}
	return nil
}

var (
	_ ports.FrameDecoder = (*Decoder)(nil)
	_ ports.FrameStream  = (*Stream)(nil)
)
