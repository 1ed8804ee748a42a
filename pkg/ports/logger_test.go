package ports

import "testing"

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"quiet", LevelQuiet, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFrame_Image(t *testing.T) {
	gray := &Frame{Width: 2, Height: 1, Format: PixelGray, Pix: []byte{10, 20}}
	img := gray.Image()
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	r, _, _, _ := img.At(1, 0).RGBA()
	if uint8(r>>8) != 20 {
		t.Errorf("expected gray value 20, got %d", r>>8)
	}

	rgb := &Frame{Width: 1, Height: 1, Format: PixelRGB, Pix: []byte{1, 2, 3}}
	r, g, b, a := rgb.Image().At(0, 0).RGBA()
	if uint8(r>>8) != 1 || uint8(g>>8) != 2 || uint8(b>>8) != 3 || uint8(a>>8) != 255 {
		t.Errorf("unexpected rgb pixel %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
}
