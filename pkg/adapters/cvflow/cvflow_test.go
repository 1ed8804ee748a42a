package cvflow

import (
	"errors"
	"testing"

	"github.com/user/motionset/pkg/features"
)

func TestSelect(t *testing.T) {
	for _, engine := range []string{"", EngineNative} {
		est, err := Select(engine)
		if err != nil {
			t.Fatalf("Select(%q) failed: %v", engine, err)
		}
		if _, ok := est.(features.LucasKanade); !ok {
			t.Errorf("Select(%q) = %T, want LucasKanade", engine, est)
		}
	}

	if _, err := Select("opencl"); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestSelect_Auto(t *testing.T) {
	est, err := Select(EngineAuto)
	if err != nil {
		t.Fatalf("Select(auto) failed: %v", err)
	}
	want := EngineNative
	if Available {
		want = EngineFarneback
	}
	if est.Name() != want {
		t.Errorf("auto selected %q, want %q", est.Name(), want)
	}
}

func TestSelect_FarnebackWithoutGocv(t *testing.T) {
	if Available {
		t.Skip("built with gocv")
	}
	if _, err := Select(EngineFarneback); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
