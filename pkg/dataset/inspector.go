package dataset

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/motionset/pkg/ports"
)

// Prober reads stream properties without decoding frames.
type Prober interface {
	Probe(ctx context.Context, path string) (ports.StreamInfo, error)
}

// CategoryReport describes one category directory.
type CategoryReport struct {
	Category string
	Label    int
	Dir      string
	Exists   bool
	Entries  int
	Videos   []string
	// Sample holds the probe of the first recognised video, if any.
	Sample    *ports.StreamInfo
	SampleErr error
}

// Inspector checks a corpus layout before a build.
type Inspector struct {
	fs     ports.FileSystem
	prober Prober
}

// NewInspector creates an Inspector. prober may be nil to skip probing.
func NewInspector(fs ports.FileSystem, prober Prober) *Inspector {
	return &Inspector{fs: fs, prober: prober}
}

// Inspect reports every configured category in sorted order.
func (in *Inspector) Inspect(ctx context.Context, cfg Config) []CategoryReport {
	cfg = normalize(cfg)

	categories := make([]string, 0, len(cfg.Labels))
	for c := range cfg.Labels {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	reports := make([]CategoryReport, 0, len(categories))
	for _, category := range categories {
		r := CategoryReport{
			Category: category,
			Label:    cfg.Labels[category],
			Dir:      filepath.Join(cfg.Root, category),
		}
		if ok, _ := in.fs.Exists(r.Dir); ok {
			r.Exists = true
			entries, err := in.fs.ListDir(r.Dir)
			if err == nil {
				r.Entries = len(entries)
				for _, e := range entries {
					if !e.IsDir && !strings.HasPrefix(e.Name, ".") && cfg.Recognises(e.Name) {
						r.Videos = append(r.Videos, e.Name)
					}
				}
			}
		}
		if in.prober != nil && len(r.Videos) > 0 {
			info, err := in.prober.Probe(ctx, filepath.Join(r.Dir, r.Videos[0]))
			if err != nil {
				r.SampleErr = err
			} else {
				r.Sample = &info
			}
		}
		reports = append(reports, r)
	}
	return reports
}
