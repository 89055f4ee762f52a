package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jperezcano/sessiondx-go/internal/cli/command"
	"github.com/jperezcano/sessiondx-go/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	app := command.App()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
