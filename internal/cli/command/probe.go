// Package command provides CLI command definitions for sessiondx.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// ProbeCommand returns the probe command.
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Exercise every gateway operation against an existing session",
		ArgsUsage: "SESSION_ID",
		Action:    probeRun,
	}
}

func probeRun(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	env := GetEnv(c)
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	report := env.Probe.Run(ctx, sessionID)
	if err := env.formatter().Format(os.Stdout, report); err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("probe failed")
	}
	return nil
}
