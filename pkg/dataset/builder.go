package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/pipeline"
	"github.com/user/motionset/pkg/ports"
)

// Builder walks a labeled corpus and featurizes every video in it.
type Builder struct {
	cfg       Config
	extractor pipeline.Extractor
	sampler   pipeline.Sampler
	fs        ports.FileSystem
	metrics   ports.MetricsRecorder
	logger    ports.Logger

	// OnStart, if set, is called after discovery with the number of
	// outcomes the run will produce.
	OnStart func(total int)
	// OnOutcome, if set, is called once per video from the collecting
	// goroutine. It must not block for long.
	OnOutcome func(Outcome)
}

// New creates a Builder. The extractor must produce vectors of cfg.Schema
// without applying its own per-video timeout; cfg.Timeout covers both
// extraction and frame export. sampler may be nil when frame export is
// disabled.
func New(
	cfg Config,
	extractor pipeline.Extractor,
	sampler pipeline.Sampler,
	fs ports.FileSystem,
	metrics ports.MetricsRecorder,
	logger ports.Logger,
) *Builder {
	return &Builder{
		cfg:       normalize(cfg),
		extractor: extractor,
		sampler:   sampler,
		fs:        fs,
		metrics:   metrics,
		logger:    logger.WithComponent("dataset"),
	}
}

func normalize(cfg Config) Config {
	if cfg.Schema.Len() == 0 {
		cfg.Schema = features.Default
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions()
	}
	exts := make([]string, 0, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	cfg.Extensions = exts
	return cfg
}

// Config returns the normalized configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// job is one recognised video.
type job struct {
	category string
	label    int
	videoID  string
	path     string
}

// Run processes the corpus. Video-level failures become skip markers.
// Run fails when no category directory exists, on a schema mismatch, or
// when the dataset table cannot be written. If ctx is cancelled, Run
// returns the partial result together with ctx.Err().
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Schema:    b.cfg.Schema,
		Config:    b.cfg,
	}

	jobs, skipped, issues, err := b.discover()
	result.Issues = issues
	if err != nil {
		return result, err
	}

	b.logger.Info("Run %s: %d videos in %d categories, %d workers",
		result.RunID, len(jobs), len(b.cfg.Labels)-len(issues), b.cfg.Workers)
	if b.OnStart != nil {
		b.OnStart(len(jobs) + len(skipped))
	}

	for _, o := range skipped {
		b.collect(result, o)
	}

	fatal := b.execute(ctx, jobs, func(o Outcome) { b.collect(result, o) })
	sortOutcomes(result.Outcomes)
	result.FinishedAt = time.Now()

	if fatal != nil {
		b.logger.Error("Build aborted: %v", fatal)
		return result, fatal
	}

	if err := ctx.Err(); err != nil {
		result.Interrupted = true
		b.logger.Warn("Build interrupted after %d of %d videos", len(result.Outcomes)-len(skipped), len(jobs))
		if werr := b.writeMetadata(result); werr != nil {
			b.logger.Warn("Failed to write metadata: %v", werr)
		}
		return result, err
	}

	if err := b.writeMetadata(result); err != nil {
		return result, err
	}

	c := result.Counts()
	b.logger.Info("Build completed: %d processed (%d resumed), %d skipped", c.Processed, c.Resumed, c.Skipped)
	return result, nil
}

// discover lists the category directories in sorted order. Files that
// cannot become jobs are returned as skip outcomes.
func (b *Builder) discover() ([]job, []Outcome, []Issue, error) {
	categories := make([]string, 0, len(b.cfg.Labels))
	for c := range b.cfg.Labels {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var (
		jobs    []job
		skipped []Outcome
		issues  []Issue
	)
	for _, category := range categories {
		dir := filepath.Join(b.cfg.Root, category)
		entries, err := b.listCategory(dir)
		if err != nil {
			b.logger.Warn("Category directory missing: %s", dir)
			issues = append(issues, Issue{Category: category, Dir: dir, Err: err})
			continue
		}

		seen := make(map[string]bool)
		for _, e := range entries {
			if e.IsDir || strings.HasPrefix(e.Name, ".") {
				continue
			}
			path := filepath.Join(dir, e.Name)
			id := pipeline.VideoID(e.Name)

			reason := Reason("")
			switch {
			case !b.cfg.Recognises(e.Name):
				reason = ReasonUnsupportedExtension
			case seen[id]:
				reason = ReasonDuplicateID
			}
			if reason != "" {
				skipped = append(skipped, Outcome{Skip: &Skip{
					VideoID: id, Category: category, SourcePath: path, Reason: reason,
				}})
				continue
			}
			seen[id] = true
			jobs = append(jobs, job{category: category, label: b.cfg.Labels[category], videoID: id, path: path})
		}
	}

	if len(issues) == len(categories) {
		return nil, nil, issues, fmt.Errorf("%w: %w under %s", ErrNoCategories, ErrDirectoryMissing, b.cfg.Root)
	}
	return jobs, skipped, issues, nil
}

func (b *Builder) listCategory(dir string) ([]ports.DirEntry, error) {
	ok, err := b.fs.Exists(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryMissing, dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryMissing, dir)
	}
	entries, err := b.fs.ListDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryMissing, dir, err)
	}
	return entries, nil
}

// collect is only called from the goroutine running Run.
func (b *Builder) collect(result *Result, o Outcome) {
	result.Outcomes = append(result.Outcomes, o)
	if o.Record != nil {
		b.metrics.VideoProcessed(o.Record.Category, o.Record.FrameCount, o.Elapsed)
	} else {
		b.metrics.VideoSkipped(o.Skip.Category, string(o.Skip.Reason))
		b.logger.Warn("Skipped %s (%s): %s", o.Skip.SourcePath, o.Skip.Reason, o.Skip.Detail())
	}
	if b.OnOutcome != nil {
		b.OnOutcome(o)
	}
}

// execute runs the worker pool and feeds outcomes to collect in arrival
// order. It returns the first fatal error.
func (b *Builder) execute(ctx context.Context, js []job, collect func(Outcome)) error {
	if len(js) == 0 {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	numWorkers := b.cfg.Workers
	if numWorkers > len(js) {
		numWorkers = len(js)
	}

	jobs := make(chan job, len(js))
	results := make(chan Outcome, len(js))
	errChan := make(chan error, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go b.worker(runCtx, cancel, &wg, jobs, results, errChan)
	}

	for _, j := range js {
		jobs <- j
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
		close(errChan)
	}()

	for o := range results {
		collect(o)
	}

	return <-errChan
}

func (b *Builder) worker(
	ctx context.Context,
	cancel context.CancelFunc,
	wg *sync.WaitGroup,
	jobs <-chan job,
	results chan<- Outcome,
	errChan chan<- error,
) {
	defer wg.Done()

	for j := range jobs {
		if ctx.Err() != nil {
			return
		}

		b.metrics.VideoStarted()
		start := time.Now()
		o, err := b.process(ctx, j)
		b.metrics.VideoDone()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case errChan <- fmt.Errorf("%s: %w", j.path, err):
			default:
			}
			cancel()
			return
		}
		o.Elapsed = time.Since(start)
		results <- o
	}
}

// process featurizes one video. It returns an error only for conditions
// that must stop the run: a schema mismatch or cancellation of ctx.
func (b *Builder) process(ctx context.Context, j job) (Outcome, error) {
	skip := func(reason Reason, err error) (Outcome, error) {
		return Outcome{Skip: &Skip{
			VideoID: j.videoID, Category: j.category, SourcePath: j.path, Reason: reason, Err: err,
		}}, nil
	}

	videoCtx := ctx
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		videoCtx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	if ok, err := b.fs.Exists(j.path); err != nil || !ok {
		if err == nil {
			err = fmt.Errorf("%w: %s no longer exists", ports.ErrUnreadableSource, j.path)
		}
		return skip(ReasonMissingFile, err)
	}

	rec, resumed := b.resume(j)
	if !resumed {
		res, err := b.extractor.Execute(videoCtx, pipeline.ExtractInput{
			Path: j.path, VideoID: j.videoID, Category: j.category,
		})
		if err != nil {
			if reason, ok := b.classify(ctx, err); ok {
				return skip(reason, err)
			}
			return Outcome{}, err
		}
		if !res.Vector.Schema().Equal(b.cfg.Schema) {
			return Outcome{}, fmt.Errorf("%w: extractor produced %s, dataset expects %s",
				features.ErrSchemaMismatch, res.Vector.Schema(), b.cfg.Schema)
		}
		rec = VideoRecord{
			VideoID:       j.videoID,
			Category:      j.category,
			Label:         j.label,
			Features:      res.Vector,
			FrameCount:    res.FrameCount,
			LowConfidence: res.LowConfidence,
			FeaturesPath:  featuresRel(j.category, j.videoID),
			SourcePath:    j.path,
		}
	}

	if b.cfg.Frames.Enabled && b.sampler != nil {
		rel := framesRel(j.category, j.videoID)
		dir := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rel))
		exists, _ := b.fs.Exists(dir)
		if !resumed || !exists {
			_, err := b.sampler.Execute(videoCtx, pipeline.SampleInput{
				Path:      j.path,
				OutputDir: dir,
				Width:     b.cfg.Frames.Width,
				Height:    b.cfg.Frames.Height,
				Quality:   b.cfg.Frames.Quality,
				Every:     b.cfg.Frames.Every,
			})
			if err != nil {
				if ctx.Err() != nil {
					return Outcome{}, ctx.Err()
				}
				switch {
				case errors.Is(err, context.DeadlineExceeded):
					return skip(ReasonTimeout, err)
				case errors.Is(err, ports.ErrUnreadableSource):
					return skip(ReasonUnreadable, err)
				}
				return skip(ReasonWriteFailed, err)
			}
		}
		rec.FramesDir = rel
	}

	// The feature file is written last: its presence marks a finished video.
	if !resumed {
		data, err := encodeArtifact(rec)
		if err == nil {
			err = b.fs.WriteFile(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rec.FeaturesPath)), data)
		}
		if err != nil {
			return skip(ReasonWriteFailed, err)
		}
		b.logger.Debug("Processed %s: %d frames", j.path, rec.FrameCount)
	} else {
		b.logger.Debug("Resumed %s from existing artifact", j.path)
	}

	return Outcome{Record: &rec}, nil
}

// classify maps an extraction error to a skip reason. It reports false for
// errors that must stop the run.
func (b *Builder) classify(ctx context.Context, err error) (Reason, bool) {
	switch {
	case ctx.Err() != nil:
		return "", false
	case errors.Is(err, features.ErrSchemaMismatch):
		return "", false
	case errors.Is(err, features.ErrNoFrames):
		return ReasonZeroFrames, true
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout, true
	default:
		return ReasonUnreadable, true
	}
}

// resume loads a valid feature artifact for j, unless Force is set.
func (b *Builder) resume(j job) (VideoRecord, bool) {
	if b.cfg.Force {
		return VideoRecord{}, false
	}
	rel := featuresRel(j.category, j.videoID)
	data, err := b.fs.ReadFile(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rel)))
	if err != nil {
		return VideoRecord{}, false
	}
	a, vec, err := decodeArtifact(data, b.cfg.Schema, j.category, j.videoID)
	if err != nil {
		b.logger.Debug("Recomputing %s: %v", j.path, err)
		return VideoRecord{}, false
	}
	return VideoRecord{
		VideoID:       j.videoID,
		Category:      j.category,
		Label:         j.label,
		Features:      vec,
		FrameCount:    a.FrameCount,
		LowConfidence: a.LowConfidence,
		FeaturesPath:  rel,
		SourcePath:    j.path,
		Resumed:       true,
	}, true
}

func (b *Builder) writeMetadata(result *Result) error {
	dir := filepath.Join(b.cfg.OutputDir, metadataDir)

	table, err := encodeTable(b.cfg.Schema, result.Records())
	if err != nil {
		return fmt.Errorf("encode dataset table: %w", err)
	}
	skips, err := encodeSkips(result.Skips())
	if err != nil {
		return fmt.Errorf("encode skip table: %w", err)
	}
	schema, err := encodeSchema(b.cfg.Schema)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}

	for name, data := range map[string][]byte{tableFile: table, skippedFile: skips, schemaFile: schema} {
		if err := b.fs.WriteFile(filepath.Join(dir, name), data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
