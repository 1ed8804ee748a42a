package ports

import (
	"context"
	"errors"
	"image"
)

// ErrUnreadableSource is returned when a video cannot be opened or decoded.
// Decoder implementations wrap it together with the underlying cause.
var ErrUnreadableSource = errors.New("unreadable source")

// PixelFormat selects the pixel layout produced by a FrameStream.
type PixelFormat int

const (
	// PixelGray yields one luma byte per pixel.
	PixelGray PixelFormat = iota
	// PixelRGB yields three bytes per pixel in R, G, B order.
	PixelRGB
)

// Channels returns the number of bytes per pixel.
func (p PixelFormat) Channels() int {
	if p == PixelRGB {
		return 3
	}
	return 1
}

// String returns the ffmpeg pix_fmt name of the format.
func (p PixelFormat) String() string {
	if p == PixelRGB {
		return "rgb24"
	}
	return "gray"
}

// Frame is a single decoded video frame.
// The Pix slice belongs to the caller once returned by Next.
type Frame struct {
	Index  int
	Width  int
	Height int
	Format PixelFormat
	Pix    []byte
}

// Image wraps the frame pixels as an image.Image.
// Gray frames share the Pix buffer; RGB frames are copied into an RGBA image.
func (f *Frame) Image() image.Image {
	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Format == PixelGray {
		return &image.Gray{Pix: f.Pix, Stride: f.Width, Rect: rect}
	}
	img := image.NewRGBA(rect)
	for i, j := 0, 0; i+2 < len(f.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// StreamInfo describes a video source as reported by its container.
type StreamInfo struct {
	Source    string
	Container string
	Width     int
	Height    int
	// FrameCount is the container's declared frame count, 0 when unknown.
	FrameCount int
	FPS        float64
}

// FrameStream yields decoded frames of one video in presentation order.
type FrameStream interface {
	// Info returns the probed stream properties.
	Info() StreamInfo

	// Next returns the next frame, or io.EOF once the stream is exhausted.
	Next() (*Frame, error)

	// Close releases the underlying decoder. It is safe to call more than once.
	Close() error
}

// FrameDecoder opens video files as frame streams.
type FrameDecoder interface {
	// Open starts decoding path. The stream is bound to ctx: cancelling ctx
	// terminates decoding.
	Open(ctx context.Context, path string, format PixelFormat) (FrameStream, error)
}

// ContainerProber reads stream properties from a container without decoding.
type ContainerProber interface {
	// Supports reports whether the prober understands the file's container.
	Supports(path string) bool

	// Probe returns the stream properties of the first video track.
	Probe(ctx context.Context, path string) (StreamInfo, error)
}
