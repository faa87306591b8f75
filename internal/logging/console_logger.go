package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ConsoleLogger writes log messages to stderr through zerolog.
// Verbose messages are logged at debug level.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	logger zerolog.Logger
}

// NewConsoleLogger creates a new ConsoleLogger writing to stderr.
// If verbose is true, Verbose() calls will produce output.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

// NewConsoleLoggerTo creates a ConsoleLogger writing human-readable lines
// ("INF message") to w.
func NewConsoleLoggerTo(w io.Writer, verbose bool) *ConsoleLogger {
	out := zerolog.ConsoleWriter{
		Out:          zerolog.SyncWriter(w),
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return &ConsoleLogger{logger: zerolog.New(out).Level(levelFor(verbose))}
}

// NewJSONLogger creates a ConsoleLogger writing one JSON object per message
// to w, with a timestamp.
func NewJSONLogger(w io.Writer, verbose bool) *ConsoleLogger {
	logger := zerolog.New(zerolog.SyncWriter(w)).
		Level(levelFor(verbose)).
		With().
		Timestamp().
		Logger()
	return &ConsoleLogger{logger: logger}
}

func levelFor(verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}
