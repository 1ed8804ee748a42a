// Package main provides the CLI entry point for motionset.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/user/motionset/pkg/adapters/cvflow"
	"github.com/user/motionset/pkg/adapters/ffmpegdecoder"
	"github.com/user/motionset/pkg/adapters/filesink"
	"github.com/user/motionset/pkg/adapters/logger"
	"github.com/user/motionset/pkg/adapters/mp4probe"
	"github.com/user/motionset/pkg/adapters/nullmetrics"
	"github.com/user/motionset/pkg/adapters/nullsink"
	"github.com/user/motionset/pkg/adapters/promrecorder"
	"github.com/user/motionset/pkg/config"
	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/ports"
)

var version = "dev"

// Exit codes.
const (
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return exitUsage
	}
	return exitError
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "motionset",
		Usage:     l10n.T("Build motion feature datasets from labeled video clips"),
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   l10n.T("YAML configuration file"),
			},
			&cli.StringFlag{
				Name:     "log-level",
				Aliases:  []string{"l"},
				Usage:    l10n.T("Log level (debug, info, warn, error)"),
				Category: l10n.T("Logging"),
			},
			&cli.StringFlag{
				Name:     "log-format",
				Usage:    l10n.T("Log format (console, json)"),
				Category: l10n.T("Logging"),
			},
			&cli.BoolFlag{
				Name:     "quiet",
				Aliases:  []string{"Q"},
				Usage:    l10n.T("Suppress all log output"),
				Category: l10n.T("Logging"),
			},
			&cli.StringFlag{
				Name:     "ffmpeg",
				Usage:    l10n.T("Path to the ffmpeg executable"),
				Category: l10n.T("Decoder"),
			},
			&cli.StringFlag{
				Name:     "ffprobe",
				Usage:    l10n.T("Path to the ffprobe executable"),
				Category: l10n.T("Decoder"),
			},
		},
		Commands: []*cli.Command{
			buildCommand(),
			extractCommand(),
			checkCommand(),
			schemaCommand(),
		},
		// main reports errors and picks the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// corpusFlags are shared by build and check.
func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "root",
			Aliases:  []string{"r"},
			Usage:    l10n.T("Corpus root containing one directory per category"),
			Category: l10n.T("Corpus"),
		},
		&cli.StringFlag{
			Name:     "labels",
			Usage:    l10n.T("Category labels as name:label pairs (e.g., fighting:1,walking:0)"),
			Category: l10n.T("Corpus"),
		},
		&cli.StringSliceFlag{
			Name:     "ext",
			Usage:    l10n.T("Recognised video extensions (repeatable)"),
			Category: l10n.T("Corpus"),
		},
	}
}

// extractionFlags are shared by build and extract.
func extractionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "flow-engine",
			Usage:    l10n.T("Optical flow engine (native, farneback, auto)"),
			Category: l10n.T("Extraction"),
		},
		&cli.StringFlag{
			Name:     "flow-preset",
			Usage:    l10n.T("Optical flow preset (fast, standard, accurate)"),
			Category: l10n.T("Extraction"),
		},
		&cli.IntFlag{
			Name:     "flow-stride",
			Usage:    l10n.T("Compute flow on every Nth frame pair"),
			Category: l10n.T("Extraction"),
		},
		&cli.IntFlag{
			Name:     "max-frames",
			Usage:    l10n.T("Stop decoding after this many frames (0 = all)"),
			Category: l10n.T("Extraction"),
		},
		&cli.BoolFlag{
			Name:     "debug",
			Aliases:  []string{"d"},
			Usage:    l10n.T("Enable debug output"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     "debug-dir",
			Usage:    l10n.T("Directory for debug output"),
			Category: l10n.T("Debug"),
		},
	}
}

// loadConfig reads the configuration file and environment, then applies
// the flags that were set explicitly.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if err := applyFlags(c, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	setString := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	setInt := func(name string, dst *int) {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	setBool := func(name string, dst *bool) {
		if c.IsSet(name) {
			*dst = c.Bool(name)
		}
	}

	setString("root", &cfg.Root)
	setString("output", &cfg.OutputDir)
	setString("log-level", &cfg.LogLevel)
	setString("log-format", &cfg.LogFormat)
	setString("ffmpeg", &cfg.FFmpegPath)
	setString("ffprobe", &cfg.FFprobePath)
	setString("flow-engine", &cfg.Flow.Engine)
	setString("flow-preset", &cfg.Flow.Preset)
	setString("metrics-addr", &cfg.MetricsAddr)
	setString("debug-dir", &cfg.DebugDir)
	setInt("workers", &cfg.Workers)
	setInt("timeout", &cfg.TimeoutSec)
	setInt("flow-stride", &cfg.Flow.Stride)
	setInt("max-frames", &cfg.MaxFrames)
	setInt("frame-width", &cfg.Frames.Width)
	setInt("frame-height", &cfg.Frames.Height)
	setInt("frame-quality", &cfg.Frames.Quality)
	setInt("frame-every", &cfg.Frames.Every)
	setBool("force", &cfg.Force)
	setBool("frames", &cfg.Frames.Enabled)
	setBool("debug", &cfg.Debug)

	if c.IsSet("labels") {
		labels, err := parseLabels(c.String("labels"))
		if err != nil {
			return err
		}
		cfg.Labels = labels
	}
	if c.IsSet("ext") {
		cfg.Extensions = c.StringSlice("ext")
	}
	return nil
}

// parseLabels parses "name:label,name:label".
func parseLabels(s string) (map[string]int, error) {
	labels := make(map[string]int)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			name, value, ok = strings.Cut(pair, "=")
		}
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: label %q must be name:label", config.ErrInvalidConfig, pair)
		}
		label, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: label %q: %w", config.ErrInvalidConfig, pair, err)
		}
		labels[strings.TrimSpace(name)] = label
	}
	return labels, nil
}

// newLogger selects the logger from the configuration. Commands that print
// results on stdout pass dataOnStdout so console logs stay on stderr.
func newLogger(cfg config.Config, quiet, dataOnStdout bool, stderr io.Writer) ports.Logger {
	if quiet {
		return logger.NewNoop()
	}
	level, err := ports.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = ports.LevelInfo
	}
	switch {
	case cfg.LogFormat == "json":
		return logger.NewStructured(stderr, level)
	case dataOnStdout:
		return logger.NewConsoleWriters(level, stderr, stderr)
	default:
		return logger.NewConsole(level)
	}
}

// signalContext cancels the returned context on SIGINT or SIGTERM.
func signalContext(parent context.Context, log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// extractOptions resolves the flow engine on top of the configured options.
// Asking for farneback from a build without gocv is a configuration error.
func extractOptions(cfg config.Config, log ports.Logger) (features.Options, error) {
	opts := cfg.ExtractOptions()
	est, err := cvflow.Select(cfg.Flow.Engine)
	if err != nil {
		return opts, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	opts.FlowEstimator = est
	log.Debug("Flow engine: %s", est.Name())
	return opts, nil
}

func newDecoder(cfg config.Config) (*ffmpegdecoder.Decoder, error) {
	return ffmpegdecoder.New(ffmpegdecoder.Options{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		Probers:     []ports.ContainerProber{mp4probe.New()},
	})
}

func newDebugSink(cfg config.Config, fs ports.FileSystem, renderer ports.Renderer) (ports.DebugSink, error) {
	if !cfg.Debug {
		return nullsink.New(), nil
	}
	if err := fs.MkdirAll(cfg.DebugDir); err != nil {
		return nil, fmt.Errorf("create debug directory: %w", err)
	}
	return filesink.New(cfg.DebugDir, fs, renderer), nil
}

// newMetrics serves Prometheus metrics on cfg.MetricsAddr until ctx is done.
func newMetrics(ctx context.Context, cfg config.Config, log ports.Logger) ports.MetricsRecorder {
	if cfg.MetricsAddr == "" {
		return nullmetrics.New()
	}
	reg := prometheus.NewRegistry()
	rec := promrecorder.New(reg)
	promrecorder.StartServer(ctx, cfg.MetricsAddr, reg, log)
	return rec
}
