// Package logger provides structured logging for the cricket client.
//
// This package wraps zerolog behind a small interface:
//
//   - logger.go: zerolog configuration and initialization
//   - context.go: context-aware logging with request/trace IDs
//   - redact.go: sensitive data redaction
//
// Features:
//
//   - JSON and console output formats
//   - Log level filtering, adjustable at runtime
//   - Automatic masking of tokens, passwords and OTP codes
//   - Context propagation for request tracing
package logger
