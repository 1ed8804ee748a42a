package dataset

import (
	"sort"

	"github.com/user/motionset/pkg/summarizer"
)

// Summary converts the result into a build report.
func (r *Result) Summary() *summarizer.Summary {
	c := r.Counts()
	reasons := make(map[string]int, len(c.ByReason))
	for reason, n := range c.ByReason {
		reasons[string(reason)] = n
	}

	b := summarizer.NewBuilder().
		WithRun(r.RunID, r.StartedAt, r.FinishedAt, r.Interrupted).
		WithSchema(r.Schema.Name(), r.Schema.Version(), r.Schema.Columns()).
		WithSettings(summarizer.Settings{
			Root:          r.Config.Root,
			OutputDir:     r.Config.OutputDir,
			Workers:       r.Config.Workers,
			TimeoutSec:    int(r.Config.Timeout.Seconds()),
			FlowPreset:    r.Config.FlowPreset,
			FlowEngine:    r.Config.FlowEngine,
			FramesEnabled: r.Config.Frames.Enabled,
			Force:         r.Config.Force,
		}).
		WithTotals(summarizer.Totals{
			Processed:     c.Processed,
			Resumed:       c.Resumed,
			LowConfidence: c.LowConfidence,
			Skipped:       c.Skipped,
		}).
		WithReasons(reasons)

	missing := make(map[string]bool, len(r.Issues))
	for _, is := range r.Issues {
		missing[is.Category] = true
	}
	processed := make(map[string]int)
	skipped := make(map[string]int)
	for _, o := range r.Outcomes {
		if o.OK() {
			processed[o.Category()]++
		} else {
			skipped[o.Category()]++
		}
	}

	categories := make([]string, 0, len(r.Config.Labels))
	for name := range r.Config.Labels {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		b.AddCategory(summarizer.CategoryInfo{
			Name:      name,
			Label:     r.Config.Labels[name],
			Missing:   missing[name],
			Processed: processed[name],
			Skipped:   skipped[name],
		})
	}

	for _, s := range r.Skips() {
		b.AddSkip(summarizer.SkipInfo{
			Category: s.Category,
			VideoID:  s.VideoID,
			Reason:   string(s.Reason),
			Detail:   s.Detail(),
		})
	}

	return b.Build()
}
