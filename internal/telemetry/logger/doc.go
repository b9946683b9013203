// Package logger provides structured logging for the CLI.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: handler construction and the process-wide level
//   - context.go: request ID propagation through context.Context
//   - redact.go: masking of credentials before they reach a handler
//
// CLI output goes to stdout; logs go to stderr at warn level unless
// --verbose raises them to debug.
package logger
