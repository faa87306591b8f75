package logging

// NullLogger discards everything. It is the default logger of a scanner
// that was never given one.
type NullLogger struct{}

// NewNullLogger returns a NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...any) {}

func (l *NullLogger) Info(format string, args ...any) {}

func (l *NullLogger) Error(format string, args ...any) {}
