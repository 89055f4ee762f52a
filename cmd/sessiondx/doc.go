// Package main provides the entry point for sessiondx.
//
// sessiondx is a command-line tool for incident diagnosis sessions:
//
//   - Session lifecycle (open, show, close, delete)
//   - Recording diagnostic steps with screenshots
//   - Reconstructing the diagnostic context of a session
//   - Probing gateway connectivity end to end
//
// Usage:
//
//	sessiondx [command] [flags]
//	sessiondx session open --incident INC-1001 --system payment-svc
//	sessiondx context sxse-01kct9ns8he7a9m022x0tgbhds
//
// Running sessiondx without a command starts the interactive shell.
//
// @design DS-0601
package main
