// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/user/motionset/pkg/ports"
)

// Plot geometry in pixels.
const (
	plotWidth   = 640
	plotHeight  = 240
	plotPadding = 24
)

var (
	plotBackground = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	plotAxis       = color.RGBA{R: 0x55, G: 0x55, B: 0x77, A: 0xff}
	motionColor    = color.RGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xff}
	flowColor      = color.RGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff}
	labelColor     = color.White
)

// Sink saves per-video score series under baseDir/series.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveSeries writes <id>.json with the raw series and <id>.png with a line
// plot of both series.
func (s *Sink) SaveSeries(dump ports.SeriesDump) error {
	name := fileStem(dump)

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	if err := s.fs.WriteFile(filepath.Join(s.baseDir, "series", name+".json"), data); err != nil {
		return err
	}

	img := s.plot(dump)
	png, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode series plot: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "series", name+".png"), png)
}

func fileStem(dump ports.SeriesDump) string {
	if dump.Category == "" {
		return dump.VideoID
	}
	return dump.Category + "_" + dump.VideoID
}

// plot draws each series normalized to the tallest value across both.
func (s *Sink) plot(dump ports.SeriesDump) image.Image {
	canvas := s.renderer.CreateCanvas(plotWidth, plotHeight, plotBackground)

	left, right := plotPadding, plotWidth-plotPadding
	top, bottom := plotPadding, plotHeight-plotPadding
	canvas.DrawLine(left, bottom, right, bottom, plotAxis, 1)
	canvas.DrawLine(left, top, left, bottom, plotAxis, 1)

	peak := 0.0
	for _, series := range [][]float64{dump.Motion, dump.Flow} {
		for _, v := range series {
			if v > peak {
				peak = v
			}
		}
	}

	scale := func(series []float64) []image.Point {
		if len(series) == 0 {
			return nil
		}
		pts := make([]image.Point, len(series))
		for i, v := range series {
			x := left
			if len(series) > 1 {
				x = left + i*(right-left)/(len(series)-1)
			}
			y := bottom
			if peak > 0 {
				y = bottom - int(v/peak*float64(bottom-top))
			}
			pts[i] = image.Point{X: x, Y: y}
		}
		return pts
	}

	canvas.DrawPolyline(scale(dump.Motion), motionColor, 1.5)
	canvas.DrawPolyline(scale(dump.Flow), flowColor, 1.5)

	title := strings.TrimSpace(fmt.Sprintf("%s  motion/flow  peak %.2f", fileStem(dump), peak))
	canvas.DrawText(title, left, top/2, labelColor)

	return canvas.ToImage()
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
