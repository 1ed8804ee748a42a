package ports

import (
	"image"
	"image/color"
)

// Renderer covers the image work outside decoding: resizing exported
// frames, encoding them, and drawing the debug motion/flow plots.
type Renderer interface {
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodeImage encodes img. quality is used for JPEG only.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage scales img to exactly width x height.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas is a plot surface. Coordinates are pixels from the top-left corner.
type Canvas interface {
	DrawRect(x, y, w, h int, c color.Color)
	DrawPolyline(points []image.Point, c color.Color, width float64)
	DrawLine(x1, y1, x2, y2 int, c color.Color, width float64)
	// DrawText writes a single line starting at x, centered vertically on y.
	DrawText(text string, x, y int, c color.Color)
	ToImage() image.Image
}

// ImageFormat selects the encoding used by Renderer.EncodeImage.
type ImageFormat int

const (
	// FormatJPEG is used for exported frames.
	FormatJPEG ImageFormat = iota
	// FormatPNG is used for debug plots.
	FormatPNG
)
