package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default YAML location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML plus env overrides.
// The database URL and API key are optional: their absence degrades the
// matching subsystem instead of failing startup.
type FileConfig struct {
	Port                      string `yaml:"port"`
	LogLevel                  string `yaml:"logLevel"`
	DatabaseURL               string `yaml:"databaseURL"`
	GeminiAPIKey              string `yaml:"geminiApiKey"`
	GenerationModel           string `yaml:"generationModel"`
	RedisAddr                 string `yaml:"redisAddr"`
	RedisPassword             string `yaml:"redisPassword"`
	MaxUploadBytes            int64  `yaml:"maxUploadBytes"`
	DocTTL                    string `yaml:"docTTL"`
	MaxConcurrentExtractions  int64  `yaml:"maxConcurrentExtractions"`
	ReviewRateLimitPerMinute  int    `yaml:"reviewRateLimitPerMinute"`
	ContactRateLimitPerMinute int    `yaml:"contactRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml). A missing file is
// tolerated so env-only deployments work.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("GENERATION_MODEL"); v != "" {
		cfg.GenerationModel = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("DOC_TTL"); v != "" {
		cfg.DocTTL = strings.TrimSpace(v)
	}
	if v := os.Getenv("MAX_CONCURRENT_EXTRACTIONS"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.MaxConcurrentExtractions = n
		}
	}
	if v := os.Getenv("REVIEW_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.ReviewRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("CONTACT_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.ContactRateLimitPerMinute = n
		}
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.GenerationModel == "" {
		cfg.GenerationModel = "gemini-2.5-flash"
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.ReviewRateLimitPerMinute < 0 || cfg.ContactRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if cfg.DocTTL != "" {
		if _, err := time.ParseDuration(cfg.DocTTL); err != nil {
			return fmt.Errorf("config: invalid docTTL duration: %w", err)
		}
	}
	return nil
}

// ParseDocTTL parses the optional document-context TTL.
func ParseDocTTL(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid docTTL duration: %w", err)
	}
	return dur, nil
}
