// Package command provides CLI command definitions for sessiondx.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jperezcano/sessiondx-go/internal/cli/output"
	"github.com/jperezcano/sessiondx-go/internal/core/service"
)

// RecordCommand returns the record command.
func RecordCommand() *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: "Record a diagnostic step into a session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "session",
				Aliases:  []string{"s"},
				Usage:    "Session ID to record into",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "invocation",
				Usage: "Existing invocation ID (a new one is created when omitted)",
			},
			&cli.StringFlag{
				Name:     "engineer",
				Aliases:  []string{"e"},
				Usage:    "Engineer performing the step",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "component",
				Usage:    "Component under investigation",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "action",
				Aliases:  []string{"a"},
				Usage:    "What was done",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "result",
				Usage: "What was observed",
			},
			&cli.StringFlag{
				Name:  "next-steps",
				Usage: "Planned follow-up",
			},
			&cli.StringSliceFlag{
				Name:  "image",
				Usage: "Screenshot file to attach (repeatable)",
			},
		},
		Action: recordStep,
	}
}

func recordStep(c *cli.Context) error {
	env := GetEnv(c)
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	resp, err := env.Recorder.Record(ctx, &service.RecordStepRequest{
		SessionID:    c.String("session"),
		InvocationID: c.String("invocation"),
		EngineerID:   c.String("engineer"),
		Component:    c.String("component"),
		Action:       c.String("action"),
		Result:       c.String("result"),
		NextSteps:    c.String("next-steps"),
		ImagePaths:   c.StringSlice("image"),
	})
	if err != nil {
		return err
	}

	if env.Config.Output == string(output.FormatJSON) {
		return env.formatter().Format(os.Stdout, resp)
	}

	fmt.Printf("Step recorded: %s (invocation %s)\n", resp.StepID, resp.InvocationID)
	if !resp.Verified {
		fmt.Println("Warning: read-back verification did not confirm the step.")
	}
	for _, path := range resp.SkippedImages {
		fmt.Printf("Warning: attachment skipped: %s\n", path)
	}
	return nil
}
