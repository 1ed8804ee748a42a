package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/user/motionset/pkg/mocks"
	"github.com/user/motionset/pkg/ports"
)

type proberFunc func(ctx context.Context, path string) (ports.StreamInfo, error)

func (f proberFunc) Probe(ctx context.Context, path string) (ports.StreamInfo, error) {
	return f(ctx, path)
}

func TestInspector_Inspect(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("/data/normal/b.mp4", []byte("x"))
	fs.WriteFile("/data/normal/a.AVI", []byte("x"))
	fs.WriteFile("/data/normal/readme.md", []byte("x"))

	var probed string
	prober := proberFunc(func(ctx context.Context, path string) (ports.StreamInfo, error) {
		probed = path
		return ports.StreamInfo{Source: path, Width: 320, Height: 240, FrameCount: 90}, nil
	})

	cfg := DefaultConfig()
	cfg.Root = "/data"
	reports := NewInspector(fs, prober).Inspect(context.Background(), cfg)

	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	anomaly, normal := reports[0], reports[1]
	if anomaly.Category != "anomaly" || anomaly.Exists {
		t.Errorf("anomaly should be reported missing: %+v", anomaly)
	}
	if !normal.Exists || normal.Entries != 3 || len(normal.Videos) != 2 {
		t.Errorf("unexpected normal report %+v", normal)
	}
	if normal.Sample == nil || normal.Sample.Width != 320 {
		t.Errorf("expected probe of first video, got %+v", normal.Sample)
	}
	if probed != "/data/normal/a.AVI" {
		t.Errorf("expected first video in name order to be probed, got %s", probed)
	}
}

func TestInspector_ProbeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("/data/anomaly/a.mp4", []byte("x"))

	prober := proberFunc(func(ctx context.Context, path string) (ports.StreamInfo, error) {
		return ports.StreamInfo{}, ports.ErrUnreadableSource
	})

	cfg := DefaultConfig()
	cfg.Root = "/data"
	reports := NewInspector(fs, prober).Inspect(context.Background(), cfg)
	if !errors.Is(reports[0].SampleErr, ports.ErrUnreadableSource) {
		t.Errorf("expected probe error to be reported, got %v", reports[0].SampleErr)
	}
}

func TestConfig_Recognises(t *testing.T) {
	cfg := Config{Extensions: []string{".mp4", ".avi"}}
	tests := []struct {
		name string
		want bool
	}{
		{"clip.mp4", true},
		{"CLIP.AVI", true},
		{"/data/normal/x.mp4", true},
		{"notes.txt", false},
		{"mp4", false},
	}
	for _, tt := range tests {
		if got := cfg.Recognises(tt.name); got != tt.want {
			t.Errorf("Recognises(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
