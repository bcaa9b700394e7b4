package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/pandeptwidyaop/bagfilter/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(config.LoggingConfig{Level: tt.level, Format: "console"})
			if err != nil {
				t.Fatalf("failed to build logger: %v", err)
			}
			if !logger.Core().Enabled(tt.expected) {
				t.Errorf("expected %s to be enabled", tt.expected)
			}
			if tt.expected > zapcore.DebugLevel && logger.Core().Enabled(tt.expected-1) {
				t.Errorf("expected %s to be disabled", tt.expected-1)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}
