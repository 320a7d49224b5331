package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/config"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/types"
)

var runTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type endpointFetcher map[string]model.GasReading

func (f endpointFetcher) Fetch(_ context.Context, endpoint string) model.GasReading {
	return f[endpoint]
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Chains: types.Registry(),
		RPCURLs: map[types.SupportedChain]string{
			types.ChainBase:     "base-rpc",
			types.ChainOptimism: "op-rpc",
			types.ChainArbitrum: "arb-rpc",
		},
		OutputDir: filepath.Join(t.TempDir(), "reports"),
	}
}

func scenarioFetcher() endpointFetcher {
	return endpointFetcher{
		"base-rpc": model.NewReading(12, model.Float(1.2)),
		"op-rpc":   model.NewReading(6, model.Float(0.8)),
		"arb-rpc":  model.NewReading(9, model.Float(1.0)),
	}
}

func readReport(t *testing.T, path string) model.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r model.Report
	require.NoError(t, json.Unmarshal(data, &r))
	return r
}

func TestRun_Scenario(t *testing.T) {
	cfg := testConfig(t)

	res, err := New(cfg, WithFetcher(scenarioFetcher()), WithClock(func() time.Time { return runTime })).Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, res.Report.BestChain)
	assert.Equal(t, "optimism", *res.Report.BestChain)
	assert.Contains(t, res.Report.Recommendation, "Optimism")
	assert.Equal(t, "2026-10-19T12:00:00Z", res.Report.Timestamp)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "gas_report_2026-10-19T12-00-00Z.json"), res.Path)
	assert.Equal(t, res.Report, readReport(t, res.Path))
}

func TestRun_MissingConfiguration(t *testing.T) {
	cfg := testConfig(t)
	delete(cfg.RPCURLs, types.ChainBase)
	cfg.FetchConcurrently = true

	res, err := New(cfg, WithFetcher(scenarioFetcher()), WithClock(func() time.Time { return runTime })).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Report.Chains, 3)
	base := res.Report.Chains["base"]
	assert.Contains(t, base.Error, "missing configuration")
	assert.Nil(t, base.GasPriceGwei)
	assert.Nil(t, base.PriorityFeeGwei)
}

func TestRun_AllChainsFail(t *testing.T) {
	cfg := testConfig(t)
	cfg.RPCURLs = nil

	res, err := New(cfg, WithFetcher(endpointFetcher{}), WithClock(func() time.Time { return runTime })).Run(context.Background())
	require.NoError(t, err)

	assert.Nil(t, res.Report.BestChain)
	assert.Contains(t, res.Report.Recommendation, "insufficient data")
	for _, c := range types.Registry() {
		assert.Contains(t, res.Report.Chains, string(c.ID))
	}
	_, statErr := os.Stat(res.Path)
	assert.NoError(t, statErr)
}

func TestRun_WebhookUnreachableIsNotFatal(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	cfg := testConfig(t)
	cfg.WebhookURL = closed.URL
	closed.Close()

	hook := test.NewGlobal()
	defer hook.Reset()

	res, err := New(cfg, WithFetcher(scenarioFetcher()), WithClock(func() time.Time { return runTime })).Run(context.Background())
	require.NoError(t, err)

	_, statErr := os.Stat(res.Path)
	assert.NoError(t, statErr, "report must be persisted even when the webhook fails")

	var warnings []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "Webhook notification failed") {
			warnings = append(warnings, e)
		}
	}
	assert.Len(t, warnings, 1, "webhook failure is logged once as a warning")
}

func TestRun_WebhookReceivesReport(t *testing.T) {
	var hits int32
	var got model.Report
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.WebhookURL = srv.URL

	res, err := New(cfg, WithFetcher(scenarioFetcher()), WithClock(func() time.Time { return runTime })).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, res.Report, got)
}

func TestRun_UnwritableOutputIsFatal(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := testConfig(t)
	cfg.OutputDir = filepath.Join(blocker, "reports")

	_, err := New(cfg, WithFetcher(scenarioFetcher())).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_InvalidReadingIsDemoted(t *testing.T) {
	cfg := testConfig(t)
	fetcher := scenarioFetcher()
	fetcher["op-rpc"] = model.NewReading(-1, nil)

	res, err := New(cfg, WithFetcher(fetcher), WithClock(func() time.Time { return runTime })).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.Report.Chains["optimism"].Error)
	require.NotNil(t, res.Report.BestChain)
	assert.Equal(t, "arbitrum", *res.Report.BestChain)
}

func TestRun_MetricsTextfile(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "gasopt.prom")

	_, err := New(cfg, WithFetcher(scenarioFetcher()), WithClock(func() time.Time { return runTime })).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gasopt_best_score_gwei")
}

func TestRun_EmptyReadingIsAnError(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		cfg := testConfig(t)
		cfg.FetchConcurrently = concurrent
		fetcher := scenarioFetcher()
		delete(fetcher, "arb-rpc")

		var res Result
		var err error
		require.NotPanics(t, func() {
			res, err = New(cfg, WithFetcher(fetcher), WithClock(func() time.Time { return runTime })).Run(context.Background())
		})
		require.NoError(t, err)

		arb := res.Report.Chains["arbitrum"]
		assert.Equal(t, "no gas data returned", arb.Error)
		assert.Nil(t, arb.GasPriceGwei)
		require.NotNil(t, res.Report.BestChain)
		assert.Equal(t, "optimism", *res.Report.BestChain)
	}
}

func TestRun_MaxGasPriceCap(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxGasPriceGwei = 10

	res, err := New(cfg, WithFetcher(scenarioFetcher()), WithClock(func() time.Time { return runTime })).Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, res.Report.Chains["base"].Error, "exceeds maximum")
	assert.True(t, res.Report.Chains["optimism"].OK())
	assert.True(t, res.Report.Chains["arbitrum"].OK())
	require.NotNil(t, res.Report.BestChain)
	assert.Equal(t, "optimism", *res.Report.BestChain)
}
