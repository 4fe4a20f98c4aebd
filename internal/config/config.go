package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type FileStoreConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"` // 0 = unlimited
}

type StorageConfig struct {
	Backend string          `yaml:"backend"` // file | redis
	File    FileStoreConfig `yaml:"file"`
	Redis   RedisConfig     `yaml:"redis"`
}

type SweepConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type VoucherConfig struct {
	MaxBatch int `yaml:"max_batch"`
}

type Config struct {
	Log      LogConfig     `yaml:"log"`
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	Sweep    SweepConfig   `yaml:"sweep"`
	Vouchers VoucherConfig `yaml:"vouchers"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads and validates the YAML config at path.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.File.Dir == "" {
		cfg.Storage.File.Dir = "data"
	}
	if cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = 5 * time.Second
	}
	if cfg.Vouchers.MaxBatch <= 0 {
		cfg.Vouchers.MaxBatch = 50
	}

	// Minimal validation
	switch cfg.Storage.Backend {
	case "file":
	case "redis":
		if cfg.Storage.Redis.URL == "" {
			return nil, errors.New("storage.redis.url is required for the redis backend")
		}
	default:
		return nil, fmt.Errorf("unknown storage.backend %q", cfg.Storage.Backend)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
