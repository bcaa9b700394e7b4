// Package logging builds the zap logger used across the tool.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pandeptwidyaop/bagfilter/internal/config"
)

// New creates a logger from the logging config. Logs go to stderr so that
// stdout stays free for topic lists and summaries.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if cfg.Format == "json" {
		zapConfig.Encoding = "json"
	} else {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	}

	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	zapConfig.DisableStacktrace = true
	zapConfig.Sampling = nil

	return zapConfig.Build()
}
