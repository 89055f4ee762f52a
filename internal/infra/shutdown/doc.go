// Package shutdown provides signal-driven cancellation for the CLI.
//
// The first SIGINT or SIGTERM cancels the returned context so in-flight
// gateway requests abort and the interactive shell can save its history
// before exiting. A second signal terminates the process immediately.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//
// @design DS-0501
package shutdown
