// Package config loads staylist settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server and storage settings.
type Config struct {
	Addr          string        `yaml:"addr"`
	MetricsAddr   string        `yaml:"metrics_addr,omitempty"`
	DBPath        string        `yaml:"db_path,omitempty"`
	Dev           bool          `yaml:"dev"`
	RedisAddr     string        `yaml:"redis_addr,omitempty"`
	RedisPassword string        `yaml:"redis_password,omitempty"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	APIRate       float64       `yaml:"api_rps"`
	APIBurst      int           `yaml:"api_burst"`
	// APIToken enables catalog writes over the API when set.
	APIToken      string        `yaml:"api_token,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:     ":8080",
		CacheTTL: 5 * time.Minute,
		APIRate:  10,
		APIBurst: 20,
	}
}

// DefaultPath returns the path to the config file: ~/.config/staylist/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "staylist", "config.yaml"), nil
}

// Load reads the config file at path over the defaults, then applies
// STAYLIST_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("STAYLIST_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("STAYLIST_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("STAYLIST_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("STAYLIST_DEV"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing STAYLIST_DEV: %w", err)
		}
		c.Dev = b
	}
	if v := os.Getenv("STAYLIST_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("STAYLIST_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("STAYLIST_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing STAYLIST_REDIS_DB: %w", err)
		}
		c.RedisDB = n
	}
	if v := os.Getenv("STAYLIST_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing STAYLIST_CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}
	if v := os.Getenv("STAYLIST_API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("STAYLIST_API_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing STAYLIST_API_RPS: %w", err)
		}
		c.APIRate = f
	}
	return nil
}
