package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string        `yaml:"port"`
	EmailsDir     string        `yaml:"emails_dir"`
	DatabaseURL   string        `yaml:"database_url"`
	AIProvider    string        `yaml:"ai_provider"`
	AIKey         string        `yaml:"-"`
	AIModel       string        `yaml:"ai_model"`
	AIBaseURL     string        `yaml:"ai_base_url"`
	AITimeout     time.Duration `yaml:"ai_timeout"`
	MaxUploadSize string        `yaml:"max_upload_size"`
	Env           string        `yaml:"env"`
}

// LoadConfig reads settings from an optional YAML file named by CONFIG_FILE, then the process
// environment (including a .env file if present). Environment values win.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:          "8000",
		EmailsDir:     "emails",
		AIProvider:    "openai",
		MaxUploadSize: "10M",
		Env:           "development",
	}

	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = GetEnv("PORT", cfg.Port)
	cfg.EmailsDir = GetEnv("EMAILS_DIR", cfg.EmailsDir)
	cfg.DatabaseURL = GetEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.AIProvider = GetEnv("AI_PROVIDER", cfg.AIProvider)
	cfg.AIKey = firstNonEmpty(GetEnv("OPENAI_API_KEY", ""), GetEnv("AI_API_KEY", ""))
	cfg.AIModel = GetEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = GetEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.MaxUploadSize = GetEnv("MAX_UPLOAD_SIZE", cfg.MaxUploadSize)
	cfg.Env = GetEnv("ENV", cfg.Env)

	if raw := GetEnv("AI_TIMEOUT", ""); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AI_TIMEOUT: %w", err)
		}
		cfg.AITimeout = timeout
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// parseTimeout accepts a Go duration ("30s") or a plain number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

// firstNonEmpty treats an empty variable as unset, so OPENAI_API_KEY= does not hide AI_API_KEY.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// RemoteEnabled reports whether an API key is available for the remote classifier.
func (c *Config) RemoteEnabled() bool {
	return c.AIKey != ""
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.DatabaseURL == "" && c.EmailsDir == "" {
		return fmt.Errorf("EMAILS_DIR is required when DATABASE_URL is not set")
	}
	if c.AITimeout < 0 {
		return fmt.Errorf("AI_TIMEOUT must not be negative")
	}
	// Same parser as echo's BodyLimit middleware, which panics on bad input.
	limit, err := bytes.Parse(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("MAX_UPLOAD_SIZE is invalid: %w", err)
	}
	if limit < 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must not be negative, got %q", c.MaxUploadSize)
	}
	return nil
}
