// Package main is the entry point for the gas fee optimizer, a one-shot job that
// polls chain RPC endpoints, recommends the cheapest chain and writes a report.
// Scheduling is left to cron, systemd timers or CI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/config"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/otel"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/pipeline"
)

type flags struct {
	envFile    string
	outputDir  string
	webhookURL string
	logLevel   string
	quiet      bool
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "gasopt",
		Short:         "Recommend the cheapest chain by current gas fees",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.envFile, "env-file", "", "dotenv file to load before reading the environment (default .env if present)")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "directory for report files (overrides OUTPUT_DIR)")
	cmd.Flags().StringVar(&f.webhookURL, "webhook-url", "", "webhook receiving the report (overrides WEBHOOK_URL)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not print the report to stdout")

	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	if err := config.LoadEnvFile(f.envFile, f.envFile != ""); err != nil {
		return err
	}

	cfg := applyFlags(config.Load(), f)
	setupLogging(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdown := otel.InitTracer(cfg.OtelEndpoint)
	defer shutdown()

	res, err := pipeline.New(cfg).Run(cmd.Context())
	if err != nil {
		return err
	}

	if !f.quiet {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Report); err != nil {
			return fmt.Errorf("printing report: %w", err)
		}
	}
	return nil
}

// main is the entry point for the application
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logrus.Errorf("Run failed: %v", err)
		os.Exit(1)
	}
}
