// Package utils provides utility functions for the credit opportunity engine.
package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. Handlers resolve it through GetLogger
// instead of threading a logger argument through every call.
var Logger *zap.Logger

// InitLogger builds the global logger. Lambda invocations get JSON on stdout
// for CloudWatch; local runs get the colored development console. Unknown
// level strings fall back to info.
func InitLogger(level string) error {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

// GetLogger returns the global logger, initializing from LOG_LEVEL when a
// caller logs before main has run InitLogger.
func GetLogger() *zap.Logger {
	if Logger == nil {
		_ = InitLogger(os.Getenv("LOG_LEVEL"))
	}
	return Logger
}

// Sync flushes buffered entries. Deferred in every main.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Field aliases so handlers do not need a zap import for common fields.
var (
	String = zap.String
	Int    = zap.Int
	Error  = zap.Error
)
