package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	"github.com/couchcryptid/storm-sounding-service/internal/observability"
)

// ReportPublisher forwards a finished report to downstream consumers.
type ReportPublisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// StationLookup resolves station metadata for a report.
type StationLookup interface {
	Lookup(station string) (domain.StationInfo, bool)
}

// Analyzer orchestrates fetch, parse, diagnose and publish for one sounding.
// It is safe for concurrent use; each call owns its Sounding.
type Analyzer struct {
	fetcher   domain.SoundingFetcher
	stations  StationLookup
	publisher ReportPublisher
	opts      domain.Options
	logger    *slog.Logger
	metrics   *observability.Metrics

	archiveDown atomic.Bool
}

// New creates an Analyzer. stations and publisher may be nil.
func New(fetcher domain.SoundingFetcher, stations StationLookup, publisher ReportPublisher, opts domain.Options, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	a := &Analyzer{
		fetcher:   fetcher,
		stations:  stations,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
	if publisher != nil {
		metrics.PublishEnabled.Set(1)
	} else {
		metrics.PublishEnabled.Set(0)
	}
	return a
}

// CheckReadiness returns an error while the most recent archive request failed.
func (a *Analyzer) CheckReadiness(_ context.Context) error {
	if a.archiveDown.Load() {
		return errors.New("upper-air archive is unavailable")
	}
	return nil
}

// Analyze fetches and diagnoses the sounding of station at ts (yyyymmddhh).
func (a *Analyzer) Analyze(ctx context.Context, station, ts string) (domain.Report, error) {
	req, err := domain.ParseRequest(station, ts)
	if err != nil {
		a.metrics.Analyses.WithLabelValues("invalid").Inc()
		return domain.Report{}, err
	}

	raw, err := a.fetcher.Fetch(ctx, req)
	if err != nil {
		return domain.Report{}, a.fetchFailed(ctx, req, err)
	}
	a.archiveDown.Store(false)

	return a.AnalyzeRaw(ctx, req, raw)
}

// AnalyzeRaw diagnoses an already retrieved sounding table. A publish
// failure is logged and counted but does not fail the analysis.
func (a *Analyzer) AnalyzeRaw(ctx context.Context, req domain.Request, raw string) (domain.Report, error) {
	start := time.Now()

	s, err := domain.Parse(raw)
	if err != nil {
		a.metrics.ParseErrors.Inc()
		a.metrics.Analyses.WithLabelValues("parse_error").Inc()
		a.logger.Warn("sounding parse failed", "station", req.Station, "time", req.Time, "error", err)
		return domain.Report{}, err
	}

	report := domain.NewReport(req, s, domain.Diagnose(s, a.opts))
	if a.stations != nil {
		if info, ok := a.stations.Lookup(req.Station); ok {
			report.StationInfo = &info
		}
	}

	elapsed := time.Since(start)
	a.metrics.AnalysisDuration.Observe(elapsed.Seconds())
	a.metrics.Analyses.WithLabelValues("success").Inc()
	a.logger.Info("sounding analyzed",
		"station", req.Station,
		"time", req.Time,
		"levels", s.Len(),
		"duration", elapsed,
	)

	a.publish(ctx, report)
	return report, nil
}

func (a *Analyzer) fetchFailed(ctx context.Context, req domain.Request, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoData):
		a.archiveDown.Store(false)
		a.metrics.Analyses.WithLabelValues("no_data").Inc()
		a.logger.Info("no sounding available", "station", req.Station, "time", req.Time)
	case ctx.Err() != nil:
		a.metrics.Analyses.WithLabelValues("fetch_error").Inc()
	default:
		a.archiveDown.Store(true)
		a.metrics.Analyses.WithLabelValues("fetch_error").Inc()
		a.logger.Error("sounding fetch failed", "station", req.Station, "time", req.Time, "error", err)
	}
	return err
}

func (a *Analyzer) publish(ctx context.Context, report domain.Report) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, report); err != nil {
		a.metrics.PublishErrors.Inc()
		a.logger.Error("report publish failed", "station", report.Station, "id", report.ID, "error", err)
		return
	}
	a.metrics.ReportsPublished.Inc()
}
