package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger appropriate for the given environment.
// "local" gets a human-readable console logger with debug level,
// everything else gets the production JSON logger.
func New(env string) *zap.Logger {
	if env == "local" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zap.Must(cfg.Build())
	}

	return zap.Must(zap.NewProduction())
}
