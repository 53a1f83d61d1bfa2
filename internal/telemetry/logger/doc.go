// Package logger provides structured logging for Synap.
//
// This package wraps the standard library log/slog for structured logging:
//
//   - logger.go: slog logger configuration and initialization
//   - zap.go: empty placeholder; zap is not used
//   - context.go: Context-aware logging with request/trace IDs
//   - redact.go: Sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering
//   - Automatic sensitive data masking
//   - Context propagation for request tracing
//
package logger
