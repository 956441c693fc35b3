package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config mirrors config.yml
type Config struct {
	Addr              string  `yaml:"addr"`                // ":8080" (by default)
	LogLevel          string  `yaml:"log_level"`           // "info" (by default)
	LogJSON           bool    `yaml:"log_json"`            // console output unless set
	CacheSize         int     `yaml:"cache_size"`          // cached schedule results, 0 disables
	RateLimit         float64 `yaml:"rate_limit"`          // requests per second, 0 disables
	RateBurst         int     `yaml:"rate_burst"`          // 20 (by default)
	MaxBodyBytes      int64   `yaml:"max_body_bytes"`      // 1 MiB (by default)
	ReadTimeoutMS     int     `yaml:"read_timeout_ms"`     // 30000 (by default)
	WriteTimeoutMS    int     `yaml:"write_timeout_ms"`    // 30000 (by default)
	ShutdownTimeoutMS int     `yaml:"shutdown_timeout_ms"` // 5000 (by default)
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		CacheSize:         128,
		RateBurst:         20,
		MaxBodyBytes:      1 << 20,
		ReadTimeoutMS:     30000,
		WriteTimeoutMS:    30000,
		ShutdownTimeoutMS: 5000,
	}
}

// Load reads YAML over the defaults, then applies .env and environment
// overrides. An empty path or a missing file means defaults only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	cfg.clamp()
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if strings.HasPrefix(port, ":") {
			cfg.Addr = port
		} else {
			cfg.Addr = ":" + port
		}
	}
	if addr := strings.TrimSpace(os.Getenv("SCHEDD_ADDR")); addr != "" {
		cfg.Addr = addr
	}
	if level := strings.TrimSpace(os.Getenv("SCHEDD_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
	if raw := strings.TrimSpace(os.Getenv("SCHEDD_CACHE_SIZE")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("SCHEDD_CACHE_SIZE: %w", err)
		}
		cfg.CacheSize = n
	}
	return nil
}

// sanity clamps
func (c *Config) clamp() {
	def := Default()
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = def.Addr
	}
	if c.CacheSize < 0 {
		c.CacheSize = 0
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.RateBurst <= 0 {
		c.RateBurst = def.RateBurst
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = def.MaxBodyBytes
	}
	if c.ReadTimeoutMS <= 0 {
		c.ReadTimeoutMS = def.ReadTimeoutMS
	}
	if c.WriteTimeoutMS <= 0 {
		c.WriteTimeoutMS = def.WriteTimeoutMS
	}
	if c.ShutdownTimeoutMS <= 0 {
		c.ShutdownTimeoutMS = def.ShutdownTimeoutMS
	}
}

func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
