// Package logging provides structured logging for ringscope.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the tool. It provides both general logging
// functions and specialized functions for debug-session logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw GDB output, command round trips)
//   - Info: Normal operations (session start, round completion, verdicts)
//   - Warn: Non-fatal issues (unreadable slots, retries)
//   - Error: Fatal issues (startup failures, lost targets)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Session started",
//	    zap.String("profile", "digest-test"),
//	    zap.String("probe", "192.168.1.50:3333"),
//	)
//
// # Configuration
//
// CLI commands are silent by default; set RINGSCOPE_LOG_LEVEL or pass
// --verbose to enable output:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
