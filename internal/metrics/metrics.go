// Package metrics records Prometheus gauges describing one optimizer run.
// A run is a short-lived process, so the gauges are exported to a
// node-exporter textfile and/or a Pushgateway instead of being scraped.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
)

const jobName = "gas_fee_optimizer"

// Recorder holds the run metrics in a private registry
type Recorder struct {
	registry      *prometheus.Registry
	gasPrice      *prometheus.GaugeVec
	priorityFee   *prometheus.GaugeVec
	fetchErrors   *prometheus.GaugeVec
	bestScore     prometheus.Gauge
	lastRun       prometheus.Gauge
	webhookFailed prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered
func NewRecorder() *Recorder {
	m := &Recorder{
		registry: prometheus.NewRegistry(),
		gasPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gasopt_gas_price_gwei",
				Help: "Gas price reported by eth_gasPrice in gwei",
			},
			[]string{"chain"},
		),
		priorityFee: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gasopt_priority_fee_gwei",
				Help: "Mean recent priority fee in gwei",
			},
			[]string{"chain"},
		),
		fetchErrors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gasopt_fetch_error",
				Help: "1 if the chain produced no reading in the last run",
			},
			[]string{"chain"},
		),
		bestScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gasopt_best_score_gwei",
				Help: "Total fee of the recommended chain in gwei",
			},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gasopt_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run",
			},
		),
		webhookFailed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gasopt_webhook_failed",
				Help: "1 if the last webhook delivery failed",
			},
		),
	}

	m.registry.MustRegister(
		m.gasPrice,
		m.priorityFee,
		m.fetchErrors,
		m.bestScore,
		m.lastRun,
		m.webhookFailed,
	)

	return m
}

// ObserveReading records one chain's reading
func (m *Recorder) ObserveReading(chain string, r model.GasReading) {
	if !r.OK() {
		m.fetchErrors.WithLabelValues(chain).Set(1)
		return
	}
	m.fetchErrors.WithLabelValues(chain).Set(0)
	m.gasPrice.WithLabelValues(chain).Set(*r.GasPriceGwei)
	if r.PriorityFeeGwei != nil {
		m.priorityFee.WithLabelValues(chain).Set(*r.PriorityFeeGwei)
	}
}

// ObserveRun records the ranking outcome and run time
func (m *Recorder) ObserveRun(unixSeconds int64, bestScore float64, found bool) {
	m.lastRun.Set(float64(unixSeconds))
	if found {
		m.bestScore.Set(bestScore)
	}
}

// ObserveWebhook records whether webhook delivery failed
func (m *Recorder) ObserveWebhook(err error) {
	if err != nil {
		m.webhookFailed.Set(1)
		return
	}
	m.webhookFailed.Set(0)
}

// WriteTextfile writes all metrics in the text exposition format
func (m *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}

// Push sends all metrics to a Pushgateway
func (m *Recorder) Push(url string) error {
	if err := push.New(url, jobName).Gatherer(m.registry).Push(); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
