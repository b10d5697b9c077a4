package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Debug flag to control debug logging
	debugEnabled bool
	// The shared sugared logger instance
	log *zap.SugaredLogger
)

// Init initializes the logger. Debug mode switches to the development
// encoder and enables debug-level output.
func Init(debug bool) {
	debugEnabled = debug

	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		base = zap.NewNop()
	}
	log = base.Sugar()

	if debugEnabled {
		Debug("Debug logging enabled")
	}
}

func logger() *zap.SugaredLogger {
	if log == nil {
		Init(false)
	}
	return log
}

// Debug logs a debug message if debug mode is enabled.
func Debug(format string, v ...interface{}) {
	logger().Debugf(format, v...)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	logger().Infof(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	logger().Warnf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	logger().Errorf(format, v...)
}

// IsDebugEnabled returns whether debug logging is enabled.
func IsDebugEnabled() bool {
	return debugEnabled
}

// Sync flushes any buffered log entries.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
