// Package dataset turns a labeled directory tree of videos into a feature
// table, one row per video, with an auditable record of every video that
// could not be processed.
package dataset

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/pipeline"
)

var (
	// ErrDirectoryMissing marks a configured category directory that does not exist.
	ErrDirectoryMissing = errors.New("dataset: category directory missing")

	// ErrNoCategories is returned when no configured category directory exists.
	ErrNoCategories = errors.New("dataset: no category directory found")
)

// Reason is the code carried by a skip marker.
type Reason string

const (
	ReasonMissingFile          Reason = "missing_file"
	ReasonUnreadable           Reason = "unreadable"
	ReasonZeroFrames           Reason = "zero_frames"
	ReasonUnsupportedExtension Reason = "unsupported_extension"
	ReasonTimeout              Reason = "timeout"
	ReasonDuplicateID          Reason = "duplicate_id"
	ReasonWriteFailed          Reason = "write_failed"
)

// DefaultLabels is the minimal two-way category table.
func DefaultLabels() map[string]int {
	return map[string]int{"anomaly": 1, "normal": 0}
}

// DefaultExtensions lists the video extensions recognised out of the box.
func DefaultExtensions() []string {
	return []string{".mp4", ".avi", ".mov"}
}

// FrameOptions controls the optional frame export.
type FrameOptions struct {
	Enabled bool
	Width   int
	Height  int
	Quality int
	Every   int
}

// Config describes one build. It is passed to New and never mutated.
type Config struct {
	Root       string
	OutputDir  string
	Labels     map[string]int
	Extensions []string
	Schema     features.Schema

	// Workers is the size of the worker pool; zero means one per CPU.
	Workers int
	// Timeout bounds the processing of a single video; zero disables it.
	Timeout time.Duration
	// Force recomputes videos whose artifacts already exist.
	Force bool

	// FlowPreset and FlowEngine are reported in the build summary.
	FlowPreset string
	FlowEngine string

	Frames FrameOptions
}

// Recognises reports whether name carries one of the configured video
// extensions, compared case-insensitively.
func (c Config) Recognises(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	d := pipeline.DefaultSampleInput()
	return Config{
		Labels:     DefaultLabels(),
		Extensions: DefaultExtensions(),
		Schema:     features.Default,
		Timeout:    5 * time.Minute,
		Frames: FrameOptions{
			Width:   d.Width,
			Height:  d.Height,
			Quality: d.Quality,
			Every:   d.Every,
		},
	}
}

// VideoRecord is one row of the dataset table.
type VideoRecord struct {
	VideoID       string
	Category      string
	Label         int
	Features      features.Vector
	FrameCount    int
	LowConfidence bool
	// FeaturesPath and FramesDir are relative to the output directory,
	// slash separated. FramesDir is empty when frames are not exported.
	FeaturesPath string
	FramesDir    string
	SourcePath   string
	// Resumed is set when the record was loaded from an existing artifact.
	Resumed bool
}

// Skip is a video that produced no record.
type Skip struct {
	VideoID    string
	Category   string
	SourcePath string
	Reason     Reason
	Err        error
}

// Detail returns the underlying error message, if any.
func (s Skip) Detail() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Outcome is the result of processing one video: exactly one of Record and
// Skip is set.
type Outcome struct {
	Record  *VideoRecord
	Skip    *Skip
	Elapsed time.Duration
}

// OK reports whether the video produced a record.
func (o Outcome) OK() bool { return o.Record != nil }

// Category returns the category of the video.
func (o Outcome) Category() string {
	if o.Record != nil {
		return o.Record.Category
	}
	return o.Skip.Category
}

// VideoID returns the identifier of the video.
func (o Outcome) VideoID() string {
	if o.Record != nil {
		return o.Record.VideoID
	}
	return o.Skip.VideoID
}

func (o Outcome) sourcePath() string {
	if o.Record != nil {
		return o.Record.SourcePath
	}
	return o.Skip.SourcePath
}

// Issue is a corpus-level condition, such as a missing category directory.
type Issue struct {
	Category string
	Dir      string
	Err      error
}

// Result is the outcome of a build.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Schema     features.Schema
	// Config is the normalized configuration the run used.
	Config Config

	Outcomes []Outcome
	Issues   []Issue

	// Interrupted is set when the run was cancelled before every video
	// was processed.
	Interrupted bool
}

// Records returns the successful records in table order.
func (r *Result) Records() []VideoRecord {
	var out []VideoRecord
	for _, o := range r.Outcomes {
		if o.Record != nil {
			out = append(out, *o.Record)
		}
	}
	return out
}

// Skips returns the skip markers in table order.
func (r *Result) Skips() []Skip {
	var out []Skip
	for _, o := range r.Outcomes {
		if o.Skip != nil {
			out = append(out, *o.Skip)
		}
	}
	return out
}

// Counts aggregates outcomes.
type Counts struct {
	Processed     int
	Resumed       int
	LowConfidence int
	Skipped       int
	ByReason      map[Reason]int
}

// Counts returns processed/skipped totals with a per-reason breakdown.
func (r *Result) Counts() Counts {
	c := Counts{ByReason: make(map[Reason]int)}
	for _, o := range r.Outcomes {
		switch {
		case o.Record != nil:
			c.Processed++
			if o.Record.Resumed {
				c.Resumed++
			}
			if o.Record.LowConfidence {
				c.LowConfidence++
			}
		case o.Skip != nil:
			c.Skipped++
			c.ByReason[o.Skip.Reason]++
		}
	}
	return c
}

func sortOutcomes(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		a, b := outcomes[i], outcomes[j]
		if a.Category() != b.Category() {
			return a.Category() < b.Category()
		}
		if a.VideoID() != b.VideoID() {
			return a.VideoID() < b.VideoID()
		}
		return a.sourcePath() < b.sourcePath()
	})
}
