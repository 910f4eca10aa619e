// Package config loads server settings: defaults, then an optional YAML file,
// then environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fusion-demo/internal/domain/entities"
)

type Config struct {
	// 空でも起動はする。合成リクエスト時にエラーとして表示する
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	Model        string        `yaml:"model"`
	Port         string        `yaml:"port"`
	MaxUploadMB  int           `yaml:"max_upload_mb"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	StaticDir    string        `yaml:"static_dir"`
}

func Default() *Config {
	return &Config{
		Model:       entities.DefaultFusionModel,
		Port:        "8080",
		MaxUploadMB: 10,
		SessionTTL:  time.Hour,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load reads path when non-empty, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	} else if v := getenv("API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}

	if v := getenv("GEMINI_MODEL"); v != "" {
		c.Model = v
	}

	if v := getenv("PORT"); v != "" {
		c.Port = v
	}

	if v := getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_MB: %w", err)
		}
		c.MaxUploadMB = n
	}

	if v := getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	if v := getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}

	if v := getenv("STATIC_DIR"); v != "" {
		c.StaticDir = v
	}

	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Model == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	} else if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	if c.MaxUploadMB <= 0 || c.MaxUploadMB > 64 {
		errs = append(errs, fmt.Errorf("max_upload_mb must be between 1 and 64, got %d", c.MaxUploadMB))
	}
	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Errorf("session_ttl must be at least 1m, got %s", c.SessionTTL))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger() *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
