package logging

import (
	"encoding/hex"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar controls logging verbosity. When unset or empty, logging is
// silent so curated UI output stays clean. Valid values: "debug", "info",
// "warn", "error".
const LogLevelEnvVar = "RINGSCOPE_LOG_LEVEL"

// rawDumpLimit caps how many bytes LogRawBytes renders per entry.
const rawDumpLimit = 256

// Initialize creates the global logger at the given level. An empty level
// falls back to RINGSCOPE_LOG_LEVEL; if that is also empty, logging is
// disabled entirely.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		// An explicit but unrecognized level still gets output.
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// InitializeFromEnv initializes logging from RINGSCOPE_LOG_LEVEL. This is
// how CLI commands set up logging: silent by default.
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger, a nop logger when uninitialized.
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogSessionEvent logs a session lifecycle event.
func LogSessionEvent(probe string, event string) {
	Info("Session event",
		zap.String("probe", probe),
		zap.String("event", event),
	)
}

// LogStop logs a target stop with its classified location.
func LogStop(location string, kind string) {
	Info("Target stopped",
		zap.String("location", location),
		zap.String("kind", kind),
	)
}

// LogGDBCommand logs one GDB command round trip. Raw output is only
// attached at debug level; it can be large.
func LogGDBCommand(command string, output string) {
	if GetLogger().Core().Enabled(zapcore.DebugLevel) {
		Debug("GDB command",
			zap.String("command", command),
			zap.String("output", output),
		)
	}
}

// LogRawBytes logs raw bytes in hex and ASCII, for stub protocol debugging.
func LogRawBytes(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

func hexDump(data []byte) string {
	if len(data) > rawDumpLimit {
		return hex.EncodeToString(data[:rawDumpLimit]) + "..."
	}
	return hex.EncodeToString(data)
}

func asciiDump(data []byte) string {
	if len(data) > rawDumpLimit {
		data = data[:rawDumpLimit]
	}
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// Sync flushes any buffered log entries.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
