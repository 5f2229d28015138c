// Command sounding fetches one upper-air sounding from the University of
// Wyoming archive (or reads it from a file) and prints its diagnostics.
//
// Usage:
//
//	go run ./cmd/sounding 72451 2024051500
//	go run ./cmd/sounding 72451 2024051500 --format json --output ddc.json
//	go run ./cmd/sounding 72451 2024051500 --input ddc.txt --plot ddc.png
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/couchcryptid/storm-sounding-service/internal/adapter/plot"
	"github.com/couchcryptid/storm-sounding-service/internal/adapter/uwyo"
	"github.com/couchcryptid/storm-sounding-service/internal/config"
	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	"github.com/couchcryptid/storm-sounding-service/internal/observability"
	"github.com/couchcryptid/storm-sounding-service/internal/pipeline"
	"github.com/couchcryptid/storm-sounding-service/internal/render"
	"github.com/couchcryptid/storm-sounding-service/internal/stations"
)

// errUsage marks argument errors; the usage text has already been printed.
var errUsage = errors.New("invalid arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "sounding:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	station    string
	time       string
	input      string
	format     string
	output     string
	plot       string
	legacyWrap bool
	baseURL    string
	timeout    time.Duration
	verbose    bool
}

func parseArgs(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	parser := argparse.NewParser("sounding", "Computes convective diagnostics for an upper-air sounding")

	station := parser.StringPositional(&argparse.Options{
		Help: "Station WMO number or ICAO identifier, e.g. 72451"})
	ts := parser.StringPositional(&argparse.Options{
		Help: "Observation time as yyyymmddhh (UTC)"})

	input := parser.String("i", "input", &argparse.Options{
		Help: "Read the sounding table from this file instead of the archive"})
	format := parser.Selector("f", "format", []string{"text", "json"}, &argparse.Options{
		Default: "text",
		Help:    "Output format: text or json"})
	output := parser.String("o", "output", &argparse.Options{
		Help: "Write the report to this file instead of stdout"})
	plotPath := parser.String("p", "plot", &argparse.Options{
		Help: "Also draw the temperature/dewpoint profile to this file (.png, .svg, .pdf)"})
	legacyWrap := parser.Flag("", "legacy-wrap", &argparse.Options{
		Default: cfg.LegacyStormWrap,
		Help:    "Use the historical 360-d storm motion direction wrap"})
	baseURL := parser.String("", "base-url", &argparse.Options{
		Default: cfg.UWYOBaseURL,
		Help:    "Archive endpoint"})
	timeout := parser.String("", "timeout", &argparse.Options{
		Default: cfg.UWYOTimeout.String(),
		Help:    "Archive request timeout"})
	verbose := parser.Flag("v", "verbose", &argparse.Options{
		Help: "Log archive requests to stderr"})

	if err := parser.Parse(args); err != nil {
		fmt.Fprint(stderr, parser.Usage(err))
		return options{}, errUsage
	}

	d, err := time.ParseDuration(*timeout)
	if err != nil || d <= 0 {
		fmt.Fprint(stderr, parser.Usage(fmt.Sprintf("invalid --timeout %q", *timeout)))
		return options{}, errUsage
	}

	return options{
		station:    *station,
		time:       *ts,
		input:      *input,
		format:     *format,
		output:     *output,
		plot:       *plotPath,
		legacyWrap: *legacyWrap,
		baseURL:    *baseURL,
		timeout:    d,
		verbose:    *verbose,
	}, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts, err := parseArgs(args, cfg, stderr)
	if err != nil {
		return err
	}

	// Reports go to stdout, so logs stay on stderr.
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	metrics := observability.NewUnregisteredMetrics()

	catalog, err := stations.Load(cfg.StationCatalog)
	if err != nil {
		return err
	}

	client := uwyo.NewClient(opts.baseURL, cfg.UWYORegion, opts.timeout, cfg.UWYOMaxRetries, logger, metrics)
	analyzer := pipeline.New(client, catalog, nil, domain.Options{LegacyStormWrap: opts.legacyWrap}, logger, metrics)

	report, err := analyze(ctx, analyzer, opts)
	if err != nil {
		return err
	}

	if err := writeReport(report, opts, stdout); err != nil {
		return err
	}

	if opts.plot != "" {
		title := report.Station + " " + report.ObservedAt.Format("2006-01-02 15Z")
		if err := plot.Save(opts.plot, title, report.Sounding); err != nil {
			return err
		}
	}
	return nil
}

func analyze(ctx context.Context, analyzer *pipeline.Analyzer, opts options) (domain.Report, error) {
	if opts.input == "" {
		return analyzer.Analyze(ctx, opts.station, opts.time)
	}

	req, err := domain.ParseRequest(opts.station, opts.time)
	if err != nil {
		return domain.Report{}, err
	}
	raw, err := os.ReadFile(opts.input)
	if err != nil {
		return domain.Report{}, fmt.Errorf("read input: %w", err)
	}
	return analyzer.AnalyzeRaw(ctx, req, string(raw))
}

// createOutput opens the --output file.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func writeReport(report domain.Report, opts options, stdout io.Writer) (err error) {
	w := stdout
	if opts.output != "" {
		f, cerr := createOutput(opts.output)
		if cerr != nil {
			return fmt.Errorf("create output: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		w = f
	}

	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}
	return render.Report(w, report)
}
