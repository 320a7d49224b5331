// Package config provides configuration loading and management for the application.
// It is the only package that reads the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/types"
)

// Config holds all application configuration
type Config struct {
	// Chains in registry order
	Chains []types.ChainConfig

	// RPC URLs keyed by chain id. A chain without an entry is unconfigured.
	RPCURLs map[types.SupportedChain]string

	// Optional webhook that receives each report
	WebhookURL string

	// Directory that receives one report file per run
	OutputDir string

	// Per-request timeout for outbound calls, 0 keeps the transport default
	RequestTimeout time.Duration

	// Shared outbound RPC budget in requests per second, 0 disables pacing
	RPCRateLimit float64
	RPCRateBurst int

	// Readings above this gas price are discarded, 0 disables the cap
	MaxGasPriceGwei float64

	// Fetch chains in parallel instead of one after another
	FetchConcurrently bool

	// Metrics export targets
	MetricsTextfile string
	PushgatewayURL  string

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	LogLevel  string
	LogFormat string
}

// LoadEnvFile pre-populates the environment from a dotenv file.
// A missing default file is not an error.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	logrus.Debugf("Loaded environment from %s", path)
	return nil
}

// Load creates a new Config from environment variables
func Load() Config {
	chains := types.Registry()
	urls := make(map[types.SupportedChain]string, len(chains))
	for _, c := range chains {
		if v, ok := GetEnv(c.RPCEnvVar); ok && strings.TrimSpace(v) != "" {
			urls[c.ID] = strings.TrimSpace(v)
		}
	}

	return Config{
		Chains:            chains,
		RPCURLs:           urls,
		WebhookURL:        strings.TrimSpace(GetEnvOrDefault("WEBHOOK_URL", "")),
		OutputDir:         GetEnvOrDefault("OUTPUT_DIR", "reports"),
		RequestTimeout:    GetEnvAsDuration("REQUEST_TIMEOUT", 0),
		RPCRateLimit:      GetEnvAsFloat("RPC_RATE_LIMIT", 0),
		RPCRateBurst:      GetEnvAsInt("RPC_RATE_BURST", 1),
		MaxGasPriceGwei:   GetEnvAsFloat("MAX_GAS_PRICE_GWEI", 0),
		FetchConcurrently: GetEnvAsBool("FETCH_CONCURRENTLY", false),
		MetricsTextfile:   GetEnvOrDefault("METRICS_TEXTFILE", ""),
		PushgatewayURL:    GetEnvOrDefault("PUSHGATEWAY_URL", ""),
		OtelEndpoint:      GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LogLevel:          strings.ToLower(GetEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(GetEnvOrDefault("LOG_FORMAT", "text")),
	}
}

// Validate checks values that would make the run meaningless
func (c Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if len(c.Chains) == 0 {
		return fmt.Errorf("no chains configured")
	}
	if c.RPCRateLimit < 0 {
		return fmt.Errorf("rpc rate limit must not be negative: %v", c.RPCRateLimit)
	}
	if c.MaxGasPriceGwei < 0 {
		return fmt.Errorf("max gas price must not be negative: %v", c.MaxGasPriceGwei)
	}
	return nil
}

// RPCURL returns the endpoint configured for a chain
func (c Config) RPCURL(id types.SupportedChain) (string, bool) {
	u, ok := c.RPCURLs[id]
	return u, ok
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists && value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.Warnf("Invalid integer in %s: %q, using default: %v", key, value, defaultValue)
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists && value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		logrus.Warnf("Invalid float in %s: %q, using default: %v", key, value, defaultValue)
	}
	return defaultValue
}

// GetEnvAsBool retrieves an environment variable as a boolean with a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := GetEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		logrus.Warnf("Invalid boolean in %s: %q, using default: %v", key, value, defaultValue)
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists && value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.Warnf("Invalid duration in %s: %q, using default: %v", key, value, defaultValue)
	}
	return defaultValue
}
