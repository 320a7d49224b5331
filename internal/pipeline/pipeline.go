// Package pipeline runs one fetch, rank, build and deliver cycle.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/aggregate"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/config"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/fetch"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/metrics"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/otel"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/report"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/validation"
)

// Result describes a finished run
type Result struct {
	Report model.Report
	Path   string
}

// Runner sequences the stages of a run
type Runner struct {
	cfg      config.Config
	fetcher  fetch.ReadingFetcher
	notifier *report.Notifier
	metrics  *metrics.Recorder
	now      func() time.Time
}

// Option customizes a Runner
type Option func(*Runner)

// WithFetcher replaces the gas data fetcher
func WithFetcher(f fetch.ReadingFetcher) Option {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithClock replaces the source of the run timestamp
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner from configuration
func New(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		metrics: metrics.NewRecorder(),
		now:     time.Now,
	}

	if cfg.WebhookURL != "" {
		r.notifier = report.NewNotifier(cfg.WebhookURL, fetch.NewRetryClient(0, cfg.RequestTimeout))
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.fetcher == nil {
		r.fetcher = fetch.NewFetcher(
			fetch.WithHTTPClient(fetch.StandardClient(fetch.NewRetryClient(0, cfg.RequestTimeout))),
			fetch.WithRateLimit(cfg.RPCRateLimit, cfg.RPCRateBurst),
		)
	}

	return r
}

// Run executes the pipeline once. Per-chain failures and webhook failures
// are recorded and logged; only a report that cannot be written is an error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	ctx, span := otel.Tracer().Start(ctx, "pipeline.run")
	defer span.End()

	started := r.now()

	client := fetch.NewMultiChainClient(r.fetcher, r.cfg.RPCURL, r.cfg.FetchConcurrently)
	opts := validation.ValidationOptions{MaxGasPriceGwei: r.cfg.MaxGasPriceGwei}

	readings := make(map[string]model.GasReading, len(r.cfg.Chains))
	for _, cr := range client.FetchAll(ctx, r.cfg.Chains) {
		id := string(cr.Chain.ID)
		readings[id] = validation.Sanitize(id, cr.Reading, opts)
		r.metrics.ObserveReading(id, readings[id])
	}

	ranking := aggregate.Rank(r.cfg.Chains, readings)
	rep := report.Build(started, r.cfg.Chains, readings, ranking)

	if id, ok := ranking.BestChainID(); ok {
		span.SetAttributes(attribute.String("best_chain", id))
		logrus.WithFields(logrus.Fields{
			"best_chain": id,
			"score_gwei": ranking.Score,
		}).Info(rep.Recommendation)
	} else {
		logrus.Warn(rep.Recommendation)
	}

	path, err := report.Persist(rep, r.cfg.OutputDir)
	if err != nil {
		otel.RecordError(ctx, err)
		return Result{Report: rep}, fmt.Errorf("persisting report: %w", err)
	}
	logrus.WithField("path", path).Info("Report written")

	if r.notifier != nil {
		err := r.notifier.Notify(ctx, rep)
		r.metrics.ObserveWebhook(err)
		if err != nil {
			logrus.Warnf("Webhook notification failed: %v", err)
		} else {
			logrus.Info("Webhook notified")
		}
	}

	r.metrics.ObserveRun(started.Unix(), ranking.Score, ranking.Best != nil)
	r.exportMetrics()

	return Result{Report: rep, Path: path}, nil
}

func (r *Runner) exportMetrics() {
	if r.cfg.MetricsTextfile != "" {
		if err := r.metrics.WriteTextfile(r.cfg.MetricsTextfile); err != nil {
			logrus.Warnf("Metrics export failed: %v", err)
		}
	}
	if r.cfg.PushgatewayURL != "" {
		if err := r.metrics.Push(r.cfg.PushgatewayURL); err != nil {
			logrus.Warnf("Metrics push failed: %v", err)
		}
	}
}
