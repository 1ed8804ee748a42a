package summarizer

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"
)

// Formatter renders a Summary as file content.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a plain function to Formatter.
type FormatFunc func(summary *Summary) string

// Format calls f(summary).
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// ForPath picks the JSON formatter for ".json" paths and falls back to
// markdown for everything else.
func ForPath(path string, markdown Formatter) Formatter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONFormatter{}
	}
	return markdown
}

// JSONFormatter renders a Summary as indented JSON for machine consumers.
// Labels are never translated.
type JSONFormatter struct{}

type jsonSummary struct {
	GeneratedAt time.Time      `json:"generated_at"`
	RunID       string         `json:"run_id"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	DurationMs  int64          `json:"duration_ms"`
	Interrupted bool           `json:"interrupted"`
	Schema      jsonSchema     `json:"schema"`
	Settings    jsonSettings   `json:"settings"`
	Totals      jsonTotals     `json:"totals"`
	Reasons     map[string]int `json:"reasons"`
	Categories  []jsonCategory `json:"categories"`
	Skips       []jsonSkip     `json:"skips"`
}

type jsonSchema struct {
	Name    string   `json:"name"`
	Version int      `json:"version"`
	Columns []string `json:"columns"`
}

type jsonSettings struct {
	Root          string `json:"root"`
	OutputDir     string `json:"output_dir"`
	Workers       int    `json:"workers"`
	TimeoutSec    int    `json:"timeout_sec"`
	FlowPreset    string `json:"flow_preset"`
	FlowEngine    string `json:"flow_engine"`
	FramesEnabled bool   `json:"frames_enabled"`
	Force         bool   `json:"force"`
}

type jsonTotals struct {
	Processed     int `json:"processed"`
	Resumed       int `json:"resumed"`
	LowConfidence int `json:"low_confidence"`
	Skipped       int `json:"skipped"`
}

type jsonCategory struct {
	Name      string `json:"name"`
	Label     int    `json:"label"`
	Missing   bool   `json:"missing"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
}

type jsonSkip struct {
	Category string `json:"category"`
	VideoID  string `json:"video_id"`
	Reason   string `json:"reason"`
	Detail   string `json:"detail,omitempty"`
}

// Format implements Formatter.
func (JSONFormatter) Format(s *Summary) string {
	out := jsonSummary{
		GeneratedAt: s.GeneratedAt,
		RunID:       s.Run.ID,
		StartedAt:   s.Run.StartedAt,
		FinishedAt:  s.Run.FinishedAt,
		DurationMs:  s.Run.Duration().Milliseconds(),
		Interrupted: s.Run.Interrupted,
		Schema:      jsonSchema(s.Schema),
		Settings:    jsonSettings(s.Settings),
		Totals:      jsonTotals(s.Totals),
		Reasons:     make(map[string]int, len(s.Reasons)),
		Categories:  make([]jsonCategory, 0, len(s.Categories)),
		Skips:       make([]jsonSkip, 0, len(s.Skips)),
	}
	if out.Schema.Columns == nil {
		out.Schema.Columns = []string{}
	}
	for _, r := range s.Reasons {
		out.Reasons[r.Reason] = r.Count
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, jsonCategory(c))
	}
	for _, sk := range s.Skips {
		out.Skips = append(out.Skips, jsonSkip(sk))
	}

	// Only plain values reach the encoder, so Marshal cannot fail.
	data, _ := json.MarshalIndent(out, "", "  ")
	return string(data) + "\n"
}
