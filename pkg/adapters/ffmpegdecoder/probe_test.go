package ffmpegdecoder

import (
	"math"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseProbe(t *testing.T) {
	output := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720,
			 "nb_frames": "300", "r_frame_rate": "30/1"}
		],
		"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
	}`)

	info, err := parseProbe("clip.mp4", output)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.Width != 1280 || info.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", info.Width, info.Height)
	}
	if info.FrameCount != 300 {
		t.Errorf("expected 300 frames, got %d", info.FrameCount)
	}
	if info.FPS != 30 {
		t.Errorf("expected 30 fps, got %v", info.FPS)
	}
	if info.Container != "mov" {
		t.Errorf("expected container mov, got %s", info.Container)
	}
}

func TestParseProbe_NoVideo(t *testing.T) {
	output := []byte(`{"streams": [{"codec_type": "audio"}], "format": {}}`)
	if _, err := parseProbe("a.mp3", output); err == nil {
		t.Error("expected error when no video stream is present")
	}
	if _, err := parseProbe("x", []byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
