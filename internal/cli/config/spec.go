package config

import (
	"fmt"
	"time"
)

// CLIConfig is the full configuration of the sessiondx CLI.
type CLIConfig struct {
	Gateway  GatewayConfig  `koanf:"gateway"`
	Output   string         `koanf:"output"`
	Log      LogConfig      `koanf:"log"`
	Recorder RecorderConfig `koanf:"recorder"`
}

// GatewayConfig selects and authenticates the session gateway.
type GatewayConfig struct {
	// Endpoint is the gateway address. The special scheme "memory:" selects
	// the in-process gateway, useful for trying the CLI without a server.
	Endpoint string `koanf:"endpoint"`
	Region   string `koanf:"region"`
	APIKeyID string `koanf:"api_key_id"`
	APIKey   string `koanf:"api_key"`
	// TLSCAFile names a PEM bundle of extra root CAs trusted when the
	// endpoint uses https with a private CA.
	TLSCAFile string `koanf:"tls_ca_file"`
}

// LogConfig configures CLI logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// RecorderConfig configures step-write retry behavior.
type RecorderConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	RetryDelay  time.Duration `koanf:"retry_delay"`
}

// Default returns the built-in configuration defaults.
func Default() *CLIConfig {
	return &CLIConfig{
		Gateway: GatewayConfig{
			Endpoint: "localhost:8470",
			Region:   "us-east-1",
		},
		Output: "text",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Recorder: RecorderConfig{
			MaxAttempts: 3,
			RetryDelay:  time.Second,
		},
	}
}

// Validate checks the configuration for values no command could use.
func (c *CLIConfig) Validate() error {
	if c.Gateway.Endpoint == "" {
		return fmt.Errorf("gateway.endpoint must not be empty")
	}
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("output must be text or json, got %q", c.Output)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	if c.Recorder.MaxAttempts < 1 {
		return fmt.Errorf("recorder.max_attempts must be at least 1")
	}
	if c.Recorder.RetryDelay < 0 {
		return fmt.Errorf("recorder.retry_delay must not be negative")
	}
	return nil
}
