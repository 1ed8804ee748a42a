package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/user/motionset/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 60, color.White)
	img := canvas.ToImage()
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 60 {
		t.Errorf("expected 100x60, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	red := color.RGBA{R: 255, A: 255}
	canvas.DrawRect(10, 10, 5, 5, red)
	canvas.DrawPolyline([]image.Point{{0, 50}, {50, 10}, {99, 30}}, color.Black, 2)
	canvas.DrawLine(0, 0, 99, 0, color.Black, 1)
	canvas.DrawText("motion", 2, 55, color.Black)

	r8, g8, b8, _ := canvas.ToImage().At(12, 12).RGBA()
	if r8>>8 != 255 || g8>>8 != 0 || b8>>8 != 0 {
		t.Errorf("expected red pixel inside rect, got %d %d %d", r8>>8, g8>>8, b8>>8)
	}
}

func TestRenderer_EncodeJPEG(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(0, 0, 50, 40))

	data, err := r.EncodeImage(img, ports.FormatJPEG, 90)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode failed: %v", err)
	}
	if decoded.Bounds().Dx() != 50 || decoded.Bounds().Dy() != 40 {
		t.Errorf("expected 50x40, got %v", decoded.Bounds())
	}

	// Out-of-range quality is clamped rather than rejected.
	if _, err := r.EncodeImage(img, ports.FormatJPEG, 500); err != nil {
		t.Errorf("expected clamped quality to encode, got %v", err)
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()
	data, err := r.EncodeImage(image.NewGray(image.Rect(0, 0, 8, 8)), ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("png.Decode failed: %v", err)
	}

	if _, err := r.EncodeImage(image.NewGray(image.Rect(0, 0, 1, 1)), ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()
	src := image.NewRGBA(image.Rect(0, 0, 640, 360))

	resized := r.ResizeImage(src, 224, 224)
	if resized.Bounds().Dx() != 224 || resized.Bounds().Dy() != 224 {
		t.Errorf("expected 224x224, got %v", resized.Bounds())
	}

	if same := r.ResizeImage(src, 640, 360); same != image.Image(src) {
		t.Error("expected same-size resize to return the input")
	}
}
