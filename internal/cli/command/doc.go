// Package command provides CLI command definitions for sessiondx.
//
// It uses urfave/cli/v2 for command parsing. Commands share an Env built
// once per invocation: resolved configuration, the gateway client, and the
// domain services. Running sessiondx without a subcommand starts the
// interactive shell.
//
// @design DS-0603
package command
