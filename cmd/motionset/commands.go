package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/user/motionset/pkg/adapters/ggrenderer"
	"github.com/user/motionset/pkg/adapters/linearmodel"
	"github.com/user/motionset/pkg/adapters/mp4probe"
	"github.com/user/motionset/pkg/adapters/osfilesystem"
	"github.com/user/motionset/pkg/dataset"
	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/inference"
	"github.com/user/motionset/pkg/pipeline"
	"github.com/user/motionset/pkg/ports"
	"github.com/user/motionset/pkg/stages/extract"
	"github.com/user/motionset/pkg/stages/sample"
	"github.com/user/motionset/pkg/summarizer"
)

// =============================================================================
// build
// =============================================================================

func buildCommand() *cli.Command {
	flags := append(corpusFlags(),
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    l10n.T("Output directory for features and metadata"),
			Category: l10n.T("Output"),
		},
		&cli.BoolFlag{
			Name:     "force",
			Aliases:  []string{"f"},
			Usage:    l10n.T("Recompute videos that already have feature artifacts"),
			Category: l10n.T("Output"),
		},
		&cli.StringFlag{
			Name:     "summary",
			Usage:    l10n.T("Output execution summary to file (Markdown, or JSON for .json paths)"),
			Category: l10n.T("Output"),
		},
		&cli.IntFlag{
			Name:     "workers",
			Aliases:  []string{"w"},
			Usage:    l10n.T("Number of videos processed in parallel (0 = CPU count)"),
			Category: l10n.T("Processing"),
		},
		&cli.IntFlag{
			Name:     "timeout",
			Usage:    l10n.T("Per-video timeout in seconds (0 = none)"),
			Category: l10n.T("Processing"),
		},
		&cli.StringFlag{
			Name:     "metrics-addr",
			Usage:    l10n.T("Serve Prometheus metrics on this address (e.g., :9090)"),
			Category: l10n.T("Processing"),
		},
		&cli.BoolFlag{
			Name:     "no-progress",
			Usage:    l10n.T("Disable the progress bar"),
			Category: l10n.T("Processing"),
		},
		&cli.BoolFlag{
			Name:     "frames",
			Usage:    l10n.T("Export resized JPEG frames for each video"),
			Category: l10n.T("Frame export"),
		},
		&cli.IntFlag{
			Name:     "frame-width",
			Usage:    l10n.T("Exported frame width (default: 224)"),
			Category: l10n.T("Frame export"),
		},
		&cli.IntFlag{
			Name:     "frame-height",
			Usage:    l10n.T("Exported frame height (default: 224)"),
			Category: l10n.T("Frame export"),
		},
		&cli.IntFlag{
			Name:     "frame-quality",
			Usage:    l10n.T("Exported JPEG quality (1-100)"),
			Category: l10n.T("Frame export"),
		},
		&cli.IntFlag{
			Name:     "frame-every",
			Usage:    l10n.T("Export every Nth decoded frame"),
			Category: l10n.T("Frame export"),
		},
	)

	return &cli.Command{
		Name:   "build",
		Usage:  l10n.T("Featurize a labeled corpus into a dataset"),
		Flags:  append(flags, extractionFlags()...),
		Action: runBuild,
	}
}

func runBuild(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBuild(); err != nil {
		return err
	}

	quiet := c.Bool("quiet")
	log := newLogger(cfg, quiet, false, c.App.ErrWriter)
	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	decoder, err := newDecoder(cfg)
	if err != nil {
		return err
	}
	sink, err := newDebugSink(cfg, fs, renderer)
	if err != nil {
		return err
	}
	metrics := newMetrics(ctx, cfg, log)

	opts, err := extractOptions(cfg, log)
	if err != nil {
		return err
	}

	// The builder applies the per-video timeout around extraction and
	// frame export together.
	extractor := extract.NewStage(decoder, features.Default, opts, 0, sink, log)
	var sampler pipeline.Sampler
	if cfg.Frames.Enabled {
		sampler = sample.NewStage(decoder, renderer, fs, log)
	}

	bcfg := cfg.ToBuilderConfig()
	bcfg.FlowEngine = opts.FlowEstimator.Name()
	builder := dataset.New(bcfg, extractor, sampler, fs, metrics, log)

	var bar *progressbar.ProgressBar
	if !quiet && !c.Bool("no-progress") && isTerminal(os.Stderr) {
		builder.OnStart = func(total int) { bar = newProgressBar(c.App.ErrWriter, total) }
		builder.OnOutcome = func(dataset.Outcome) { bar.Add(1) }
	}

	result, runErr := builder.Run(ctx)
	if bar != nil {
		bar.Finish()
	}

	if path := c.String("summary"); path != "" && result != nil && (runErr == nil || result.Interrupted) {
		writer := summarizer.NewWriter(newSummaryFormatter(path), fs)
		if err := writer.Write(path, result.Summary()); err != nil {
			log.Warn("Failed to write summary: %v", err)
		} else {
			log.Info("Summary saved to %s", path)
		}
	}

	if runErr != nil {
		if result != nil && result.Interrupted {
			return cli.Exit(l10n.T("Build interrupted; completed videos are kept and resume on the next run"), exitInterrupted)
		}
		return runErr
	}

	log.Info("Output saved to %s", cfg.OutputDir)
	return nil
}

// newSummaryFormatter writes JSON for ".json" paths and Markdown otherwise.
func newSummaryFormatter(path string) summarizer.Formatter {
	return summarizer.ForPath(path, summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
		summarizer.WithMaxSkips(200),
	))
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(l10n.T("Featurizing")),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("videos"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// =============================================================================
// extract
// =============================================================================

func extractCommand() *cli.Command {
	flags := append(extractionFlags(),
		&cli.StringFlag{
			Name:     "model",
			Aliases:  []string{"m"},
			Usage:    l10n.T("Classifier artifact (JSON) used to label each video"),
			Category: l10n.T("Inference"),
		},
		&cli.IntFlag{
			Name:     "timeout",
			Usage:    l10n.T("Per-video timeout in seconds (0 = none)"),
			Category: l10n.T("Processing"),
		},
	)

	return &cli.Command{
		Name:      "extract",
		Usage:     l10n.T("Print the feature vector of one or more videos"),
		ArgsUsage: "VIDEO...",
		Flags:     flags,
		Action:    runExtract,
	}
}

// extractOutput is one JSON line written by extract.
type extractOutput struct {
	VideoID   string           `json:"video_id"`
	Path      string           `json:"path"`
	Schema    features.Schema  `json:"schema"`
	Features  *features.Vector `json:"features,omitempty"`
	Label     *int             `json:"label,omitempty"`
	Anomalous *bool            `json:"anomalous,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func runExtract(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit(l10n.T("At least one video argument is required"), exitUsage)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log := newLogger(cfg, c.Bool("quiet"), true, c.App.ErrWriter)
	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	fs := osfilesystem.New()
	decoder, err := newDecoder(cfg)
	if err != nil {
		return err
	}
	sink, err := newDebugSink(cfg, fs, ggrenderer.New())
	if err != nil {
		return err
	}

	var clf ports.Classifier
	if path := c.String("model"); path != "" {
		model, err := linearmodel.LoadFile(fs, path, features.Default)
		if err != nil {
			return err
		}
		clf = model
	}

	opts, err := extractOptions(cfg, log)
	if err != nil {
		return err
	}
	stage := extract.NewStage(decoder, features.Default, opts, cfg.Timeout(), sink, log)
	adapter := inference.New(stage, features.Default, log)

	enc := json.NewEncoder(c.App.Writer)
	failed := 0
	for _, path := range c.Args().Slice() {
		out, err := extractOne(ctx, adapter, clf, path)
		if err != nil {
			if errors.Is(err, features.ErrSchemaMismatch) || ctx.Err() != nil {
				return err
			}
			failed++
			out.Error = err.Error()
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}

	if failed > 0 {
		return cli.Exit(l10n.F("%d of %d videos could not be featurized", failed, c.NArg()), exitError)
	}
	return nil
}

func extractOne(ctx context.Context, adapter *inference.Adapter, clf ports.Classifier, path string) (extractOutput, error) {
	out := extractOutput{
		VideoID: pipeline.VideoID(path),
		Path:    path,
		Schema:  adapter.Schema(),
	}

	if clf == nil {
		vec, err := adapter.Extract(ctx, path)
		if err != nil {
			return out, err
		}
		out.Features = &vec
		return out, nil
	}

	p, err := adapter.Predict(ctx, path, clf)
	if err != nil {
		return out, err
	}
	out.Features = &p.Vector
	out.Label = &p.Label
	out.Anomalous = &p.Anomalous
	return out, nil
}

// =============================================================================
// check
// =============================================================================

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  l10n.T("Inspect the corpus layout without featurizing"),
		Flags:  corpusFlags(),
		Action: runCheck,
	}
}

func runCheck(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Root == "" {
		return cli.Exit(l10n.T("Corpus root is required (--root)"), exitUsage)
	}
	log := newLogger(cfg, c.Bool("quiet"), true, c.App.ErrWriter)

	var prober dataset.Prober
	if decoder, err := newDecoder(cfg); err == nil {
		prober = decoder
	} else {
		log.Warn("ffmpeg unavailable, probing MP4 containers only: %v", err)
		prober = mp4probe.New()
	}

	reports := dataset.NewInspector(osfilesystem.New(), prober).Inspect(c.Context, cfg.ToBuilderConfig())
	found := writeReports(c.App.Writer, reports)
	if found == 0 {
		return fmt.Errorf("%w: %w under %s", dataset.ErrNoCategories, dataset.ErrDirectoryMissing, cfg.Root)
	}
	return nil
}

// writeReports prints one row per category and returns the number of
// category directories that exist.
func writeReports(w io.Writer, reports []dataset.CategoryReport) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		l10n.T("CATEGORY"), l10n.T("LABEL"), l10n.T("STATUS"), l10n.T("VIDEOS"), l10n.T("SAMPLE"))

	found := 0
	for _, r := range reports {
		if !r.Exists {
			fmt.Fprintf(tw, "%s\t%d\t%s\t-\t-\n", r.Category, r.Label, l10n.T("missing"))
			continue
		}
		found++
		sample := "-"
		switch {
		case r.SampleErr != nil:
			sample = r.SampleErr.Error()
		case r.Sample != nil:
			sample = fmt.Sprintf("%s %dx%d %.2ffps %d", r.Videos[0], r.Sample.Width, r.Sample.Height, r.Sample.FPS, r.Sample.FrameCount)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d/%d\t%s\n", r.Category, r.Label, l10n.T("ok"), len(r.Videos), r.Entries, sample)
	}
	tw.Flush()
	return found
}

// =============================================================================
// schema
// =============================================================================

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: l10n.T("Print the feature schema and dataset table columns"),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "table",
				Usage: l10n.T("Print the dataset table columns instead of the schema"),
			},
		},
		Action: func(c *cli.Context) error {
			return writeSchema(c.App.Writer, features.Default, c.Bool("table"))
		},
	}
}

func writeSchema(w io.Writer, schema features.Schema, table bool) error {
	if table {
		for _, col := range dataset.TableColumns(schema) {
			fmt.Fprintln(w, col)
		}
		return nil
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
