package spanz

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig controls the logger built by NewLogger.
type LogConfig struct {
	Level       string   `envconfig:"LOG_LEVEL" default:"warn"`
	Development bool     `envconfig:"LOG_DEV" default:"false"`
	OutputPaths []string `envconfig:"LOG_OUTPUT" default:"stderr"`
}

// NewLogger builds a zap logger: json in production, console in development.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	encoding := "json"
	encoder := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoding = "console"
		encoder = zap.NewDevelopmentEncoderConfig()
		encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encoding,
		EncoderConfig:     encoder,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}
	return zapCfg.Build()
}

// newLoggerOrNop falls back to a no-op logger when cfg is unusable.
func newLoggerOrNop(cfg LogConfig) *zap.Logger {
	logger, err := NewLogger(cfg)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
