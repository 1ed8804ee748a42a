// Package summarizer renders the diagnostics of a dataset build.
package summarizer

import (
	"sort"
	"time"
)

// Summary contains everything reported about one build.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	Run      RunInfo
	Schema   SchemaInfo
	Settings Settings
	Totals   Totals

	// Reasons is sorted by descending count, then reason.
	Reasons    []ReasonCount
	Categories []CategoryInfo
	Skips      []SkipInfo
}

// RunInfo identifies the build.
type RunInfo struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool
}

// Duration returns the wall time of the run.
func (r RunInfo) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SchemaInfo describes the feature schema of the dataset.
type SchemaInfo struct {
	Name    string
	Version int
	Columns []string
}

// Settings contains the build configuration worth reporting.
type Settings struct {
	Root          string
	OutputDir     string
	Workers       int
	TimeoutSec    int
	FlowPreset    string
	FlowEngine    string
	FramesEnabled bool
	Force         bool
}

// Totals contains outcome counts.
type Totals struct {
	Processed     int
	Resumed       int
	LowConfidence int
	Skipped       int
}

// ReasonCount is the number of skips for one reason code.
type ReasonCount struct {
	Reason string
	Count  int
}

// CategoryInfo reports one category directory.
type CategoryInfo struct {
	Name      string
	Label     int
	Missing   bool
	Processed int
	Skipped   int
}

// SkipInfo is one skipped video.
type SkipInfo struct {
	Category string
	VideoID  string
	Reason   string
	Detail   string
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRun sets run identification and timing.
func (b *Builder) WithRun(id string, started, finished time.Time, interrupted bool) *Builder {
	b.summary.Run = RunInfo{
		ID:          id,
		StartedAt:   started,
		FinishedAt:  finished,
		Interrupted: interrupted,
	}
	return b
}

// WithSchema sets the feature schema.
func (b *Builder) WithSchema(name string, version int, columns []string) *Builder {
	b.summary.Schema = SchemaInfo{
		Name:    name,
		Version: version,
		Columns: append([]string(nil), columns...),
	}
	return b
}

// WithSettings sets build settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithTotals sets outcome counts.
func (b *Builder) WithTotals(totals Totals) *Builder {
	b.summary.Totals = totals
	return b
}

// WithReasons sets the skip breakdown.
func (b *Builder) WithReasons(counts map[string]int) *Builder {
	reasons := make([]ReasonCount, 0, len(counts))
	for r, n := range counts {
		reasons = append(reasons, ReasonCount{Reason: r, Count: n})
	}
	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Count != reasons[j].Count {
			return reasons[i].Count > reasons[j].Count
		}
		return reasons[i].Reason < reasons[j].Reason
	})
	b.summary.Reasons = reasons
	return b
}

// AddCategory appends a category row.
func (b *Builder) AddCategory(info CategoryInfo) *Builder {
	b.summary.Categories = append(b.summary.Categories, info)
	return b
}

// AddSkip appends a skipped video.
func (b *Builder) AddSkip(info SkipInfo) *Builder {
	b.summary.Skips = append(b.summary.Skips, info)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
