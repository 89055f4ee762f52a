// Package command provides CLI command definitions for sessiondx.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jperezcano/sessiondx-go/internal/cli/output"
)

// ContextCommand returns the context command.
func ContextCommand() *cli.Command {
	return &cli.Command{
		Name:      "context",
		Aliases:   []string{"ctx"},
		Usage:     "Reconstruct the diagnostic context of a session",
		ArgsUsage: "SESSION_ID",
		Action:    contextShow,
	}
}

func contextShow(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	env := GetEnv(c)
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	// Reconstruction walks every step of every invocation; show progress
	// on the terminal while text output is selected.
	var spinner *output.Spinner
	if env.Config.Output != string(output.FormatJSON) {
		spinner = output.NewSpinner(os.Stderr, "reconstructing context...")
		spinner.Start()
	}

	dc, err := env.Reconstructor.Reconstruct(ctx, sessionID)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	return env.formatter().Format(os.Stdout, dc)
}
