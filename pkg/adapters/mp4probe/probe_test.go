package mp4probe

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestProber_Supports(t *testing.T) {
	p := New()
	tests := map[string]bool{
		"a.mp4":      true,
		"b.MOV":      true,
		"c.m4v":      true,
		"d.avi":      false,
		"e":          false,
		"dir/f.Mp4":  true,
		"g.mp4.part": false,
	}
	for path, want := range tests {
		if got := p.Supports(path); got != want {
			t.Errorf("Supports(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestFromReader_Garbage(t *testing.T) {
	if _, err := FromReader(bytes.NewReader([]byte("definitely not an mp4 file"))); err == nil {
		t.Error("expected error for non-mp4 data")
	}
}

func TestProber_Probe(t *testing.T) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not found, skipping")
	}
	out := filepath.Join(t.TempDir(), "clip.mp4")
	cmd := exec.Command(ffmpegPath,
		"-v", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=size=96x64:rate=10",
		"-frames:v", "15",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot render test video: %v\n%s", err, output)
	}

	info, err := New().Probe(context.Background(), out)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Width != 96 || info.Height != 64 {
		t.Errorf("expected 96x64, got %dx%d", info.Width, info.Height)
	}
	if info.FrameCount != 15 {
		t.Errorf("expected 15 frames, got %d", info.FrameCount)
	}
	if info.FPS < 9.5 || info.FPS > 10.5 {
		t.Errorf("expected about 10 fps, got %v", info.FPS)
	}
	if info.Source != out {
		t.Errorf("expected source %s, got %s", out, info.Source)
	}
}
