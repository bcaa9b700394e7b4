package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	configPath := filepath.Join(tempDir, "bagfilter.yaml")
	configContent := `
tool:
  program: "/opt/ros/noetic/bin/rosbag"

execution:
  timeout: 600
  max_output_size: 5242880

cache:
  dir: "/var/cache/bags"
  file: "active.yaml"
  remove_after_filter: true

filter:
  out_dir: "/data/out"
  prefix: "trimmed_"
  suffix: ""

database:
  path: "/data/history.db"

logging:
  level: "debug"
  format: "json"
`

	err = os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tool.Program != "/opt/ros/noetic/bin/rosbag" {
		t.Errorf("expected program '/opt/ros/noetic/bin/rosbag', got '%s'", cfg.Tool.Program)
	}
	if cfg.Execution.GetTimeout() != 600*time.Second {
		t.Errorf("expected timeout 600s, got %v", cfg.Execution.GetTimeout())
	}
	if cfg.Execution.MaxOutputSize != 5242880 {
		t.Errorf("expected max_output_size 5242880, got %d", cfg.Execution.MaxOutputSize)
	}
	if cfg.Cache.CachePath() != filepath.Join("/var/cache/bags", "active.yaml") {
		t.Errorf("unexpected cache path '%s'", cfg.Cache.CachePath())
	}
	if !cfg.Cache.RemoveAfterFilter {
		t.Error("expected remove_after_filter to be true")
	}
	if cfg.Filter.OutDir != "/data/out" {
		t.Errorf("expected out_dir '/data/out', got '%s'", cfg.Filter.OutDir)
	}
	if cfg.Filter.GetPrefix() != "trimmed_" {
		t.Errorf("expected prefix 'trimmed_', got '%s'", cfg.Filter.GetPrefix())
	}
	if cfg.Filter.GetSuffix() != "" {
		t.Errorf("expected explicit empty suffix to be kept, got '%s'", cfg.Filter.GetSuffix())
	}
	if cfg.Database.Path != "/data/history.db" {
		t.Errorf("expected database path '/data/history.db', got '%s'", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level 'debug', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected format 'json', got '%s'", cfg.Logging.Format)
	}
}

func TestLoad_Defaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bagfilter.yaml")

	if err := os.WriteFile(configPath, []byte("tool: {}\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"program", cfg.Tool.Program, "rosbag"},
		{"cache dir", cfg.Cache.Dir, "./bag_yaml"},
		{"cache file", cfg.Cache.File, "bag_cached.yaml"},
		{"out dir", cfg.Filter.OutDir, "."},
		{"prefix", cfg.Filter.GetPrefix(), ""},
		{"suffix", cfg.Filter.GetSuffix(), "_filtered"},
		{"database", cfg.Database.Path, filepath.Join("./bag_yaml", "history.db")},
		{"level", cfg.Logging.Level, "info"},
		{"format", cfg.Logging.Format, "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.got)
			}
		})
	}

	if cfg.Execution.GetTimeout() != 0 {
		t.Errorf("expected no timeout, got %v", cfg.Execution.GetTimeout())
	}
	if cfg.Execution.MaxOutputSize != 1048576 {
		t.Errorf("expected max_output_size 1048576, got %d", cfg.Execution.MaxOutputSize)
	}
	if cfg.Cache.RemoveAfterFilter {
		t.Error("expected remove_after_filter to default to false")
	}
}

func TestLoad_DatabaseFollowsCacheDir(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bagfilter.yaml")
	if err := os.WriteFile(configPath, []byte("cache:\n  dir: /tmp/bags\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.Path != filepath.Join("/tmp/bags", "history.db") {
		t.Errorf("expected database inside cache dir, got '%s'", cfg.Database.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bagfilter.yaml")
	if err := os.WriteFile(configPath, []byte("tool: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Tool.Program != "rosbag" {
		t.Errorf("expected program 'rosbag', got '%s'", cfg.Tool.Program)
	}
	if cfg.Cache.CachePath() != filepath.Join("./bag_yaml", "bag_cached.yaml") {
		t.Errorf("unexpected cache path '%s'", cfg.Cache.CachePath())
	}
}
