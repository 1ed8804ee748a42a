package ffmpegdecoder

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/user/motionset/pkg/ports"
)

// Prober reads stream properties with ffprobe. It accepts every container.
type Prober struct {
	ffprobePath string
}

// NewProber locates ffprobe, preferring customPath when set.
func NewProber(customPath string) (*Prober, error) {
	path, err := findBinary("ffprobe", customPath)
	if err != nil {
		return nil, err
	}
	return &Prober{ffprobePath: path}, nil
}

// Supports returns true: ffprobe understands every container ffmpeg does.
func (p *Prober) Supports(path string) bool {
	return true
}

// Probe returns the properties of the first video stream.
func (p *Prober) Probe(ctx context.Context, path string) (ports.StreamInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-select_streams", "v:0",
		"-show_format",
		"-show_streams",
		path,
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return ports.StreamInfo{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(path, output)
}

func parseProbe(path string, output []byte) (ports.StreamInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return ports.StreamInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info := ports.StreamInfo{
			Source:    path,
			Container: firstFormatName(probe.Format.FormatName),
			Width:     stream.Width,
			Height:    stream.Height,
			FPS:       parseFrameRate(stream.RFrameRate),
		}
		if n, err := strconv.Atoi(stream.NbFrames); err == nil {
			info.FrameCount = n
		}
		return info, nil
	}

	return ports.StreamInfo{}, fmt.Errorf("no video stream in %s", path)
}

// parseFrameRate converts "30000/1001" style rates.
func parseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func firstFormatName(names string) string {
	name, _, _ := strings.Cut(names, ",")
	return name
}

// probeResult matches the ffprobe JSON output structure.
type probeResult struct {
	Format struct {
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		NbFrames   string `json:"nb_frames"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

var _ ports.ContainerProber = (*Prober)(nil)
