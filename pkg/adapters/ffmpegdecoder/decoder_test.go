package ffmpegdecoder

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/user/motionset/pkg/ports"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("ffmpeg/ffprobe not found, skipping")
	}
}

// makeTestVideo renders a synthetic clip with ffmpeg's test source.
func makeTestVideo(t *testing.T, name string, frames int) string {
	t.Helper()
	ffmpegPath, err := findBinary("ffmpeg", "")
	if err != nil {
		t.Skip("ffmpeg not found")
	}
	out := filepath.Join(t.TempDir(), name)
	cmd := exec.Command(ffmpegPath,
		"-v", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=10",
		"-frames:v", strconv.Itoa(frames),
		"-c:v", "mpeg4",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot render test video: %v\n%s", err, output)
	}
	return out
}

func TestDecoder_Open_ReadsAllFrames(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := makeTestVideo(t, "clip.avi", 12)

	dec, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	stream, err := dec.Open(context.Background(), path, ports.PixelGray)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer stream.Close()

	info := stream.Info()
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("expected 64x48, got %dx%d", info.Width, info.Height)
	}

	count := 0
	for {
		frame, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed at frame %d: %v", count, err)
		}
		if frame.Index != count {
			t.Errorf("expected index %d, got %d", count, frame.Index)
		}
		if len(frame.Pix) != 64*48 {
			t.Fatalf("expected %d bytes, got %d", 64*48, len(frame.Pix))
		}
		count++
	}
	if count != 12 {
		t.Errorf("expected 12 frames, got %d", count)
	}

	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after end, got %v", err)
	}
}

func TestDecoder_Open_RGB(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := makeTestVideo(t, "clip.avi", 2)

	dec, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	stream, err := dec.Open(context.Background(), path, ports.PixelRGB)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer stream.Close()

	frame, err := stream.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(frame.Pix) != 64*48*3 {
		t.Errorf("expected %d bytes, got %d", 64*48*3, len(frame.Pix))
	}
}

func TestDecoder_Open_Unreadable(t *testing.T) {
	skipIfNoFFmpeg(t)

	dec, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.mp4")
	if err := os.WriteFile(corrupt, []byte("this is not a video"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.mp4")},
		{"corrupt", corrupt},
		{"directory", dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dec.Open(context.Background(), tt.path, ports.PixelGray)
			if !errors.Is(err, ports.ErrUnreadableSource) {
				t.Errorf("expected ErrUnreadableSource, got %v", err)
			}
		})
	}
}

func TestDecoder_CloseMidStream(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := makeTestVideo(t, "clip.avi", 30)

	dec, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	stream, err := dec.Open(context.Background(), path, ports.PixelGray)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := stream.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		stream.Close()
		stream.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not return")
	}
}

func TestNew_CustomPathMissing(t *testing.T) {
	_, err := New(Options{FFmpegPath: filepath.Join(t.TempDir(), "no-ffmpeg")})
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}
}

type blockingProber struct{}

func (blockingProber) Supports(string) bool { return true }

func (blockingProber) Probe(ctx context.Context, path string) (ports.StreamInfo, error) {
	<-ctx.Done()
	return ports.StreamInfo{}, ctx.Err()
}

type failingProber struct{ err error }

func (p failingProber) Supports(string) bool { return true }

func (p failingProber) Probe(context.Context, string) (ports.StreamInfo, error) {
	return ports.StreamInfo{}, p.err
}

func TestDecoder_Probe_TimeoutKeepsDeadline(t *testing.T) {
	calledAfter := &failingProber{err: errors.New("should not be reached")}
	d := &Decoder{probers: []ports.ContainerProber{blockingProber{}, calledAfter}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Probe(ctx, "/clips/slow.mp4")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if err != nil && strings.Contains(err.Error(), "should not be reached") {
		t.Errorf("probing should stop once the context is done: %v", err)
	}
}

func TestDecoder_Probe_JoinsProberErrors(t *testing.T) {
	errMoov := errors.New("moov atom not found")
	errProbe := errors.New("ffprobe exited 1")
	d := &Decoder{probers: []ports.ContainerProber{failingProber{errMoov}, failingProber{errProbe}}}

	_, err := d.Probe(context.Background(), "/clips/bad.mp4")
	for _, want := range []error{ports.ErrUnreadableSource, errMoov, errProbe} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in chain, got %v", want, err)
		}
	}
}

func TestDecodeArgs_ForcesProbedSize(t *testing.T) {
	args := decodeArgs("/clips/x.mp4", ports.StreamInfo{Width: 320, Height: 240}, ports.PixelGray)
	joined := strings.Join(args, " ")
	for _, want := range []string{"-vf scale=320:240", "-pix_fmt gray", "-i /clips/x.mp4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in %q", want, joined)
		}
	}
	if args[len(args)-1] != "pipe:1" {
		t.Errorf("output must be the stdout pipe, got %q", args[len(args)-1])
	}
}
