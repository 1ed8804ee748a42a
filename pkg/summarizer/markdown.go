package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
	// maxSkips limits the skip list; zero lists every skip.
	maxSkips int
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// WithMaxSkips truncates the skip list.
func WithMaxSkips(n int) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.maxSkips = n
	}
}

// NewMarkdownFormatter creates a formatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Dataset Build Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Run"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | `%s` |\n", t("Run ID"), s.Run.ID)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Duration"), formatDuration(s.Run.Duration()))
	if s.Run.Interrupted {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Status"), t("Interrupted"))
	} else {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Status"), t("Completed"))
	}
	fmt.Fprintf(&b, "| %s | %s v%d (%s) |\n", t("Schema"), s.Schema.Name, s.Schema.Version, strings.Join(s.Schema.Columns, ", "))
	if s.Settings.Root != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Corpus"), s.Settings.Root)
		fmt.Fprintf(&b, "| %s | %s |\n", t("Output"), s.Settings.OutputDir)
		fmt.Fprintf(&b, "| %s | %d |\n", t("Workers"), s.Settings.Workers)
		fmt.Fprintf(&b, "| %s | %s |\n", t("Per-video timeout"), formatTimeout(s.Settings.TimeoutSec, t))
		if s.Settings.FlowPreset != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", t("Flow preset"), s.Settings.FlowPreset)
		}
		if s.Settings.FlowEngine != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", t("Flow engine"), s.Settings.FlowEngine)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", t("Frame export"), yesNo(s.Settings.FramesEnabled, t))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Results"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Count"))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Processed"), s.Totals.Processed)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Resumed"), s.Totals.Resumed)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Low confidence"), s.Totals.LowConfidence)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Skipped"), s.Totals.Skipped)
	for _, r := range s.Reasons {
		fmt.Fprintf(&b, "| &nbsp;&nbsp;%s | %d |\n", r.Reason, r.Count)
	}
	b.WriteString("\n")

	if len(s.Categories) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Categories"))
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n|---|---|---|---|\n", t("Category"), t("Label"), t("Processed"), t("Skipped"))
		for _, c := range s.Categories {
			if c.Missing {
				fmt.Fprintf(&b, "| %s | %d | %s | - |\n", c.Name, c.Label, t("Directory missing"))
				continue
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", c.Name, c.Label, c.Processed, c.Skipped)
		}
		b.WriteString("\n")
	}

	if len(s.Skips) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Skipped Videos"))
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n|---|---|---|---|\n", t("Category"), t("Video"), t("Reason"), t("Detail"))
		skips := s.Skips
		if f.maxSkips > 0 && len(skips) > f.maxSkips {
			skips = skips[:f.maxSkips]
		}
		for _, sk := range skips {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", sk.Category, sk.VideoID, sk.Reason, escapeCell(sk.Detail))
		}
		if len(skips) < len(s.Skips) {
			fmt.Fprintf(&b, "\n%s\n", fmt.Sprintf(t("... and %d more"), len(s.Skips)-len(skips)))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format(time.RFC3339))
	if f.version != "" {
		footer += fmt.Sprintf(" (motionset %s)", f.version)
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatTimeout(sec int, t func(string) string) string {
	if sec <= 0 {
		return t("None")
	}
	return fmt.Sprintf("%ds", sec)
}

func yesNo(v bool, t func(string) string) string {
	if v {
		return t("Yes")
	}
	return t("No")
}

// escapeCell keeps a value on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
