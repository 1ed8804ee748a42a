// Package mp4probe reads video stream properties from MP4 and QuickTime
// headers without decoding any sample.
package mp4probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/motionset/pkg/ports"
)

var extensions = map[string]bool{
	".mp4": true,
	".m4v": true,
	".mov": true,
}

// Prober implements ports.ContainerProber for ISO-BMFF files.
type Prober struct{}

// New creates a Prober.
func New() *Prober {
	return &Prober{}
}

// Supports reports whether path has an MP4 or MOV extension.
func (p *Prober) Supports(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Probe returns the properties of the first video track in path.
func (p *Prober) Probe(ctx context.Context, path string) (ports.StreamInfo, error) {
	if err := ctx.Err(); err != nil {
		return ports.StreamInfo{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return ports.StreamInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := FromReader(f)
	if err != nil {
		return ports.StreamInfo{}, err
	}
	info.Source = path
	return info, nil
}

// FromReader parses MP4 headers from r.
func FromReader(r io.ReadSeeker) (ports.StreamInfo, error) {
	mp4File, err := mp4.DecodeFile(r, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return ports.StreamInfo{}, fmt.Errorf("decode mp4: %w", err)
	}

	var traks []*mp4.TrakBox
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		traks = mp4File.Init.Moov.Traks
	} else if mp4File.Moov != nil {
		traks = mp4File.Moov.Traks
	}

	for _, trak := range traks {
		if info, ok := videoTrackInfo(trak); ok {
			info.Container = "mp4"
			// Fragmented files keep samples in moof boxes; the count is unknown here.
			if mp4File.IsFragmented() {
				info.FrameCount = 0
				info.FPS = 0
			}
			return info, nil
		}
	}

	return ports.StreamInfo{}, fmt.Errorf("no video track found")
}

func videoTrackInfo(trak *mp4.TrakBox) (ports.StreamInfo, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return ports.StreamInfo{}, false
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ports.StreamInfo{}, false
	}
	stbl := trak.Mdia.Minf.Stbl

	var info ports.StreamInfo
	for _, child := range stbl.Stsd.Children {
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
			break
		}
	}
	if info.Width == 0 || info.Height == 0 {
		return ports.StreamInfo{}, false
	}

	if stbl.Stsz != nil {
		info.FrameCount = int(stbl.Stsz.SampleNumber)
	}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 && mdhd.Duration > 0 && info.FrameCount > 0 {
		seconds := float64(mdhd.Duration) / float64(mdhd.Timescale)
		info.FPS = float64(info.FrameCount) / seconds
	}

	return info, true
}

var _ ports.ContainerProber = (*Prober)(nil)
