// Package logger provides structured logging for sessiondx.
//
// This package wraps log/slog for structured CLI logging:
//
//   - logger.go: logger configuration and initialization
//   - context.go: context-aware logging with operation/session fields
//   - redact.go: gateway credential redaction
//
// Features:
//
//   - JSON and text output formats
//   - Dynamic log level (flag, config, live reload)
//   - Automatic masking of gateway API keys
//   - Context propagation for per-operation fields
//
// Reconstruction and recording are best-effort by design: every skipped
// record or degraded field is surfaced here as a warning rather than an
// error, so the operator always sees what was dropped.
//
// @req RQ-0403
// @design DS-0402
package logger
