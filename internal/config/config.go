package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tool      ToolConfig      `yaml:"tool"`
	Execution ExecutionConfig `yaml:"execution"`
	Cache     CacheConfig     `yaml:"cache"`
	Filter    FilterConfig    `yaml:"filter"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ToolConfig struct {
	Program string `yaml:"program"`
}

type ExecutionConfig struct {
	Timeout       int `yaml:"timeout"`
	MaxOutputSize int `yaml:"max_output_size"`
}

type CacheConfig struct {
	Dir               string `yaml:"dir"`
	File              string `yaml:"file"`
	RemoveAfterFilter bool   `yaml:"remove_after_filter"`
}

type FilterConfig struct {
	OutDir string  `yaml:"out_dir"`
	Prefix *string `yaml:"prefix"`
	Suffix *string `yaml:"suffix"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GetTimeout returns the execution timeout, zero meaning none.
func (c *ExecutionConfig) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 0
	}
	return time.Duration(c.Timeout) * time.Second
}

// CachePath is the location of the active metadata cache.
func (c *CacheConfig) CachePath() string {
	return filepath.Join(c.Dir, c.File)
}

// GetPrefix returns the output filename prefix.
func (c *FilterConfig) GetPrefix() string {
	if c.Prefix == nil {
		return ""
	}
	return *c.Prefix
}

// GetSuffix returns the output filename suffix. An explicit empty suffix in
// the config file is honored.
func (c *FilterConfig) GetSuffix() string {
	if c.Suffix == nil {
		return "_filtered"
	}
	return *c.Suffix
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)

	return &cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

func setDefaults(cfg *Config) {
	if cfg.Tool.Program == "" {
		cfg.Tool.Program = "rosbag"
	}
	if cfg.Execution.MaxOutputSize == 0 {
		cfg.Execution.MaxOutputSize = 1048576
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "./bag_yaml"
	}
	if cfg.Cache.File == "" {
		cfg.Cache.File = "bag_cached.yaml"
	}
	if cfg.Filter.OutDir == "" {
		cfg.Filter.OutDir = "."
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.Cache.Dir, "history.db")
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}
