package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Debug bool
}

// NewLogger creates a production zap logger. When Debug is set, the log level
// is lowered to debug and callers are annotated.
func NewLogger(cfg *LoggerConfig) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Debug {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		c.Development = true
	}
	return c.Build()
}
