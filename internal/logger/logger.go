package logger

import (
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a LOG_LEVEL value onto a zap level. Unknown values fall back to info.
func ParseLevel(logLevel string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a zap logger and wraps it as a logr.Logger. The returned
// *zap.Logger must be synced by the caller before exit.
func New(logLevel string, development bool) (logr.Logger, *zap.Logger) {
	zapLevel := ParseLevel(logLevel)

	zapConfig := zap.NewProductionConfig()
	if development {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	zapConfig.EncoderConfig.CallerKey = "caller"
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := zapConfig.Build()
	if err != nil {
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(zapLevel)
		zapLogger, _ = devConfig.Build()
	}
	return zapr.NewLogger(zapLogger), zapLogger
}

// Sync flushes buffered entries. Sync errors on stdout/stderr are ignored.
func Sync(zapLogger *zap.Logger) {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}
