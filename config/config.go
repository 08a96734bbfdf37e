// Package config loads the yaml configuration. Credential values may be
// written as ${ENV_VAR} placeholders and are resolved from the environment
// at load time.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `yaml:"cexlink"`
	Logging   LoggingConfig             `yaml:"logging"`
	Exchanges map[string]ExchangeConfig `yaml:"exchanges"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

type ExchangeConfig struct {
	BaseURL       string          `yaml:"base_url"`
	WSURL         string          `yaml:"ws_url"`
	APIKey        string          `yaml:"api_key"`
	Secret        string          `yaml:"secret"`
	Password      string          `yaml:"password"`
	WalletAddress string          `yaml:"wallet_address"`
	Phone         string          `yaml:"phone"`
	Timeout       time.Duration   `yaml:"timeout"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// Load reads, env-expands and validates the yaml config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Exchanges == nil {
		cfg.Exchanges = map[string]ExchangeConfig{}
	}
	return &cfg, nil
}

// Exchange returns the section for one exchange; missing sections yield a
// zero config so public endpoints still work without any configuration.
func (c *Config) Exchange(name string) ExchangeConfig {
	return c.Exchanges[name]
}
