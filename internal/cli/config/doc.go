// Package config defines the CLI configuration for sessiondx.
//
// Configuration is resolved in layers: built-in defaults, then the YAML
// file at ~/.sessiondx/cli.yaml (or --config), then SESSIONDX_* environment
// variables, then command-line flags. Later layers win.
//
// @design DS-0602
package config
