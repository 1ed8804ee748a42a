package summarizer

import (
	"strings"
	"testing"
	"time"

	"github.com/user/motionset/pkg/mocks"
)

func sampleSummary() *Summary {
	start := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	return NewBuilder().
		WithRun("0f6c", start, start.Add(2500*time.Millisecond), false).
		WithSchema("motion-flow", 1, []string{"mean_motion", "max_motion"}).
		WithSettings(Settings{Root: "/data/videos", OutputDir: "/data/out", Workers: 4, TimeoutSec: 300, FlowPreset: "standard", FlowEngine: "native"}).
		WithTotals(Totals{Processed: 8, Resumed: 2, LowConfidence: 1, Skipped: 2}).
		WithReasons(map[string]int{"unreadable": 1, "zero_frames": 1}).
		AddCategory(CategoryInfo{Name: "anomaly", Label: 1, Missing: true}).
		AddCategory(CategoryInfo{Name: "normal", Label: 0, Processed: 8, Skipped: 2}).
		AddSkip(SkipInfo{Category: "normal", VideoID: "bad", Reason: "unreadable", Detail: "moov atom | not found"}).
		AddSkip(SkipInfo{Category: "normal", VideoID: "empty", Reason: "zero_frames"}).
		Build()
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(sampleSummary())

	checks := []string{
		"# Dataset Build Summary",
		"`0f6c`",
		"2.5s",
		"motion-flow v1 (mean_motion, max_motion)",
		"/data/videos",
		"| Processed | 8 |",
		"| Skipped | 2 |",
		"unreadable | 1 |",
		"| anomaly | 1 | Directory missing | - |",
		"| normal | 0 | 8 | 2 |",
		"| Per-video timeout | 300s |",
		"| Flow preset | standard |",
		"| Flow engine | native |",
		"Completed",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	if !strings.Contains(result, `moov atom \| not found`) {
		t.Error("pipe in skip detail should be escaped")
	}
}

func TestMarkdownFormatter_Interrupted(t *testing.T) {
	s := sampleSummary()
	s.Run.Interrupted = true

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "Interrupted") {
		t.Error("expected interrupted status")
	}
}

func TestMarkdownFormatter_MaxSkips(t *testing.T) {
	result := NewMarkdownFormatter(WithMaxSkips(1)).Format(sampleSummary())

	if strings.Contains(result, "| normal | empty |") {
		t.Error("skip list should be truncated")
	}
	if !strings.Contains(result, "... and 1 more") {
		t.Error("expected truncation note")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Dataset Build Summary": "データセット構築サマリー",
			"Processed":             "処理済み",
			"Directory missing":     "ディレクトリなし",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(sampleSummary())

	for _, want := range []string{"データセット構築サマリー", "処理済み", "ディレクトリなし"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(sampleSummary())

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 ms"},
		{250 * time.Millisecond, "250 ms"},
		{1500 * time.Millisecond, "1.5s"},
		{61 * time.Second, "1m1s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(s *Summary) string { return "report " + s.Run.ID }), fs)

	if err := w.Write("out/summary.md", sampleSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, ok := fs.GetFile("out/summary.md")
	if !ok || string(data) != "report 0f6c" {
		t.Errorf("unexpected file content %q", data)
	}
}
