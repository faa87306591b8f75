// Package logging provides concrete implementations of the pgscan.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: zerolog-backed, human-readable or JSON lines on stderr
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
