package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/config"
)

// setupLogging configures the logging for the application
func setupLogging(level, format string) {
	logrus.SetOutput(os.Stderr)

	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	switch level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info", "":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
		logrus.Warnf("Unknown log level %q, using info", level)
	}
}

// applyFlags lets command line flags override environment configuration
func applyFlags(cfg config.Config, f flags) config.Config {
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if f.webhookURL != "" {
		cfg.WebhookURL = f.webhookURL
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg
}
