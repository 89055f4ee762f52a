// Package command provides CLI command definitions for sessiondx.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jperezcano/sessiondx-go/internal/cli/config"
	"github.com/jperezcano/sessiondx-go/internal/cli/output"
	"github.com/jperezcano/sessiondx-go/internal/cli/shell"
	"github.com/jperezcano/sessiondx-go/internal/core/service"
	"github.com/jperezcano/sessiondx-go/internal/gateway"
	"github.com/jperezcano/sessiondx-go/internal/gateway/memory"
	"github.com/jperezcano/sessiondx-go/internal/infra/buildinfo"
	"github.com/jperezcano/sessiondx-go/internal/telemetry/logger"
)

// MemoryEndpoint selects the in-process gateway instead of HTTP.
const MemoryEndpoint = "memory:"

// Env carries the resolved configuration and wired services shared by all
// commands in one invocation.
type Env struct {
	Config  *config.CLIConfig
	Gateway gateway.Gateway
	Log     logger.Logger

	Lifecycle     *service.LifecycleService
	Recorder      *service.RecorderService
	Reconstructor *service.ReconstructorService
	Probe         *service.ProbeService
}

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "sessiondx",
		Usage:   "Incident diagnosis session tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SessionCommand(),
			RecordCommand(),
			ContextCommand(),
			ProbeCommand(),
		},
		Before: func(c *cli.Context) error {
			if _, ok := c.App.Metadata["env"]; ok {
				// Tests inject a prebuilt Env.
				return nil
			}
			env, err := buildEnv(c)
			if err != nil {
				return err
			}
			c.App.Metadata["env"] = env
			return nil
		},
		Action: func(c *cli.Context) error {
			// No subcommand: start the interactive shell.
			env := GetEnv(c)
			sh := shell.New(shell.Options{
				Input:         os.Stdin,
				Output:        os.Stdout,
				Lifecycle:     env.Lifecycle,
				Recorder:      env.Recorder,
				Reconstructor: env.Reconstructor,
				Probe:         env.Probe,
				ConfigPath:    watchableConfigPath(c),
			})
			return sh.Run(c.Context)
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path (default ~/.sessiondx/cli.yaml)",
			EnvVars: []string{"SESSIONDX_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "gateway",
			Aliases: []string{"g"},
			Usage:   "Gateway endpoint, or memory: for an in-process gateway",
		},
		&cli.StringFlag{
			Name:    "region",
			Aliases: []string{"r"},
			Usage:   "Gateway region",
		},
		&cli.StringFlag{
			Name:  "api-key-id",
			Usage: "API key ID for authentication",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "API key secret for authentication",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// buildEnv resolves config, applies flag overrides, and wires the services.
func buildEnv(c *cli.Context) (*Env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if v := c.String("gateway"); v != "" {
		cfg.Gateway.Endpoint = v
	}
	if v := c.String("region"); v != "" {
		cfg.Gateway.Region = v
	}
	if v := c.String("api-key-id"); v != "" {
		cfg.Gateway.APIKeyID = v
	}
	if v := c.String("api-key"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := c.String("output"); v != "" {
		cfg.Output = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if c.Bool("verbose") {
		level = "debug"
	}
	log, err := logger.New(logger.Config{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	gw, err := newGateway(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewEnv(cfg, gw, log), nil
}

// NewEnv wires the domain services over a gateway.
func NewEnv(cfg *config.CLIConfig, gw gateway.Gateway, log logger.Logger) *Env {
	if log == nil {
		log = logger.Default()
	}
	return &Env{
		Config:  cfg,
		Gateway: gw,
		Log:     log,
		Lifecycle: service.NewLifecycleService(gw, log),
		Recorder: service.NewRecorderService(gw, service.RecorderConfig{
			MaxAttempts: cfg.Recorder.MaxAttempts,
			RetryDelay:  cfg.Recorder.RetryDelay,
		}, log),
		Reconstructor: service.NewReconstructorService(gw, nil, log),
		Probe:         service.NewProbeService(gw, log),
	}
}

func newGateway(cfg *config.CLIConfig, log logger.Logger) (gateway.Gateway, error) {
	if cfg.Gateway.Endpoint == MemoryEndpoint {
		return memory.New(), nil
	}
	return gateway.NewHTTPGateway(gateway.HTTPConfig{
		Endpoint:  cfg.Gateway.Endpoint,
		Region:    cfg.Gateway.Region,
		APIKeyID:  cfg.Gateway.APIKeyID,
		APIKey:    cfg.Gateway.APIKey,
		TLSCAFile: cfg.Gateway.TLSCAFile,
		Logger:    log,
	})
}

// watchableConfigPath returns the config file the shell should watch for
// live log-level changes, or "" when none exists.
func watchableConfigPath(c *cli.Context) string {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// GetEnv retrieves the shared Env from the app metadata.
func GetEnv(c *cli.Context) *Env {
	if env, ok := c.App.Metadata["env"].(*Env); ok {
		return env
	}
	return nil
}

// formatter returns the output formatter selected by config.
func (e *Env) formatter() output.Formatter {
	return output.NewFormatter(output.Format(e.Config.Output))
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
