// Package command provides CLI command definitions for sessiondx.
package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jperezcano/sessiondx-go/internal/cli/output"
	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/core/service"
)

const commandTimeout = 30 * time.Second

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Manage diagnosis sessions",
		Subcommands: []*cli.Command{
			{
				Name:  "open",
				Usage: "Open a new diagnosis session for an incident",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "incident",
						Aliases:  []string{"i"},
						Usage:    "Incident identifier (e.g., INC-1001)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "system",
						Aliases:  []string{"s"},
						Usage:    "Affected system or service",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "severity",
						Usage: "Incident severity: high, medium, low",
						Value: domain.SeverityHigh,
					},
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Extra session tag as KEY=VALUE",
					},
				},
				Action: sessionOpen,
			},
			{
				Name:      "show",
				Usage:     "Show session details",
				ArgsUsage: "SESSION_ID",
				Action:    sessionShow,
			},
			{
				Name:      "close",
				Usage:     "Record a resolution and close a session (keeps its history)",
				ArgsUsage: "SESSION_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "summary",
						Aliases: []string{"m"},
						Usage:   "Resolution summary recorded in the final step",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Resolution type (e.g., resolved, mitigated, false-positive)",
						Value: "resolved",
					},
				},
				Action: sessionClose,
			},
			{
				Name:      "delete",
				Usage:     "Permanently delete a session and its history",
				ArgsUsage: "SESSION_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "reason",
						Usage: "Deletion reason for the local audit log",
					},
					&cli.StringFlag{
						Name:  "approver",
						Usage: "Who approved the deletion, for the local audit log",
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: sessionDelete,
			},
		},
	}
}

func sessionOpen(c *cli.Context) error {
	env := GetEnv(c)

	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	resp, err := env.Lifecycle.Open(ctx, &service.OpenSessionRequest{
		IncidentID:     c.String("incident"),
		SystemAffected: c.String("system"),
		Severity:       c.String("severity"),
		Tags:           parseKVSlice(c.StringSlice("tag")),
	})
	if err != nil {
		return err
	}

	if env.Config.Output == string(output.FormatJSON) {
		return env.formatter().Format(os.Stdout, map[string]any{
			"session_id": resp.SessionID,
			"session":    resp.Session,
		})
	}

	fmt.Printf("Session opened: %s\n", resp.SessionID)
	if resp.Session != nil {
		fmt.Println()
		return output.RenderSession(os.Stdout, resp.Session)
	}
	return nil
}

func sessionShow(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	env := GetEnv(c)
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	session, err := env.Lifecycle.Describe(ctx, sessionID)
	if err != nil {
		return err
	}
	return env.formatter().Format(os.Stdout, session)
}

func sessionClose(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	env := GetEnv(c)
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	if err := env.Lifecycle.Close(ctx, &service.CloseSessionRequest{
		SessionID:         sessionID,
		ResolutionSummary: c.String("summary"),
		ResolutionType:    c.String("type"),
	}); err != nil {
		return err
	}
	fmt.Printf("Session %s closed.\n", sessionID)
	return nil
}

func sessionDelete(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	if !c.Bool("force") {
		fmt.Printf("This permanently deletes session '%s' and every recorded step. [y/N]: ", sessionID)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	env := GetEnv(c)
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	if err := env.Lifecycle.Delete(ctx, &service.DeleteSessionRequest{
		SessionID: sessionID,
		Reason:    c.String("reason"),
		Approver:  c.String("approver"),
	}); err != nil {
		return err
	}
	fmt.Printf("Session %s deleted.\n", sessionID)
	return nil
}

// contextWithTimeout bounds one gateway-facing command.
func contextWithTimeout(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, commandTimeout)
}

// parseKVSlice parses repeated KEY=VALUE flags into a map.
func parseKVSlice(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if k, v, ok := strings.Cut(pair, "="); ok && k != "" {
			out[k] = v
		}
	}
	return out
}
