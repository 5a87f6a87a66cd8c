// Package logger provides structured logging for the application: slog
// setup from configuration and helpers for carrying request-scoped loggers
// through contexts.
package logger
