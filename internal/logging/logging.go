// Package logging builds the zap loggers shared by the three worker
// binaries.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile zap logger unless DEBUG is set, in
// which case it builds a development one with human-friendly encoding.
func New(component string) *zap.Logger {
	var cfg zap.Config
	if os.Getenv("DEBUG") != "" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		// Logging can't come up; fall back to a no-op logger rather than
		// crash a worker over an observability failure.
		return zap.NewNop()
	}
	return logger.With(zap.String("component", component))
}
