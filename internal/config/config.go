package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration. Values come from an optional
// YAML file and can be overridden individually via environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Uploads  UploadsConfig  `yaml:"uploads"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path         string        `yaml:"path"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
}

type UploadsConfig struct {
	Dir          string   `yaml:"dir"`
	MaxSizeBytes int64    `yaml:"max_size_bytes"`
	AllowedExts  []string `yaml:"allowed_extensions"`
}

// Default returns the configuration used when no file or overrides are present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Path:         "records.db",
			BusyTimeout:  5 * time.Second,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Uploads: UploadsConfig{
			Dir:          "uploads",
			MaxSizeBytes: 10 << 20,
			AllowedExts:  []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx", ".txt"},
		},
	}
}

// Load reads configuration from the YAML file at path (skipped if path is
// empty or the file does not exist) and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if len(cfg.Uploads.AllowedExts) == 0 {
		cfg.Uploads.AllowedExts = Default().Uploads.AllowedExts
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RECORDS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("RECORDS_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RECORDS_DB_BUSY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Database.BusyTimeout = d
		}
	}
	if v := os.Getenv("RECORDS_DB_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Database.MaxOpenConns = n
		}
	}
	if v := os.Getenv("RECORDS_UPLOAD_DIR"); v != "" {
		cfg.Uploads.Dir = v
	}
	if v := os.Getenv("RECORDS_UPLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Uploads.MaxSizeBytes = n
		}
	}
}
