// Package yalogger is the structured logging facade used across the benchmark.
// Callers depend on the Logger interface only; the concrete backend is logrus.
//
// Example usage:
//
//	log := yalogger.NewBaseLogger(&yalogger.Config{Level: yalogger.InfoLevel}).NewLogger()
//	log.WithField(yalogger.KeyLabel, "encrypt").Infof("processed %d bytes", n)
package yalogger

import (
	"github.com/google/uuid"
)

// Config defines the configuration options for the logger.
//
// BaseLoggerType: The type of logger to use (e.g., Logrus).
// Level: The minimum log level to output (e.g., Info).
// FullTimestamp: Whether to include the full timestamp in log messages.
// DisableTimestamp: Whether to disable timestamps in log messages.
// TimestampFormat: The format to use for timestamps in log messages.
type Config struct {
	BaseLoggerType   BaseLoggerType
	Level            Level
	FullTimestamp    bool
	DisableTimestamp bool
	TimestampFormat  string
}

// BaseLogger is an interface for creating new Logger instances.
type BaseLogger interface {
	// NewLogger creates a new Logger instance from the base logger.
	NewLogger() Logger
}

// Logger defines a structured logging interface with support for various log levels,
// formatting, and context-aware logging using key-value fields.
//
// The With* methods never mutate the receiver; they return a derived Logger.
type Logger interface {
	// Info logs a message at the Info level.
	//
	// Example usage:
	//
	//   logger.Info("Generating RSA keys")
	Info(msg string)

	// Infof logs a formatted message at the Info level.
	//
	// Example usage:
	//
	//   logger.Infof("Processing %s", path)
	Infof(format string, args ...any)

	// Trace logs a message at the Trace level.
	Trace(msg string)

	// Tracef logs a formatted message at the Trace level.
	Tracef(format string, args ...any)

	// Error logs a message at the Error level.
	Error(msg string)

	// Errorf logs a formatted message at the Error level.
	//
	// Example usage:
	//
	//   logger.Errorf("Failed to read file: %s", filename)
	Errorf(format string, args ...any)

	// Warn logs a message at the Warn level.
	Warn(msg string)

	// Warnf logs a formatted message at the Warn level.
	Warnf(format string, args ...any)

	// Debug logs a message at the Debug level.
	Debug(msg string)

	// Debugf logs a formatted message at the Debug level.
	//
	// Example usage:
	//
	//   logger.Debugf("Chunk %d: %s", i, elapsed)
	Debugf(format string, args ...any)

	// Fatal logs a message at the Fatal level and terminates the process.
	Fatal(msg string)

	// Fatalf logs a formatted message at the Fatal level and terminates the process.
	Fatalf(format string, args ...any)

	// WithField returns a logger instance with a single field added to the context.
	//
	// Example usage:
	//
	//   logger.WithField(yalogger.KeyBatch, 3)
	WithField(key string, value any) Logger

	// WithFields returns a logger instance with multiple fields added to the context.
	WithFields(fields map[string]any) Logger

	// WithRunUUID returns a logger tagged with the benchmark run ID.
	//
	// Example usage:
	//
	//   logger.WithRunUUID(uuid.New()).Info("Run started")
	WithRunUUID(id uuid.UUID) Logger

	// GetFields returns the current log context fields as a map.
	GetFields() map[string]any

	// GetField returns the value of a field from the current log context, or nil.
	GetField(key string) any
}
