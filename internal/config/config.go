// ABOUTME: Configuration loading and parsing for docs-gateway.
// ABOUTME: Supports YAML and TOML files with environment variable expansion and duration parsing.

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the complete docs-gateway configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server" toml:"server"`
	Documentation DocumentationConfig `yaml:"documentation" toml:"documentation"`
	Logging       LoggingConfig       `yaml:"logging" toml:"logging"`
}

// ServerConfig holds server address configuration.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// DocumentationConfig holds upstream endpoint and client configuration for
// the documentation provider.
type DocumentationConfig struct {
	SearchURL          string        `yaml:"search_url" toml:"search_url"`
	RecommendationsURL string        `yaml:"recommendations_url" toml:"recommendations_url"`
	UserAgent          string        `yaml:"user_agent" toml:"user_agent"`
	Timeout            time.Duration `yaml:"-" toml:"-"`
	Cache              CacheConfig   `yaml:"cache" toml:"cache"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// CacheConfig holds page cache and memo cache configuration.
type CacheConfig struct {
	Path        string        `yaml:"path" toml:"path"`
	TTL         time.Duration `yaml:"-" toml:"-"`
	MemoEntries int           `yaml:"memo_entries" toml:"memo_entries"`

	// Raw string value for unmarshaling
	TTLRaw string `yaml:"ttl" toml:"ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Files ending in .toml use the TOML dialect; everything else is
// parsed as YAML. Environment variables in the format ${VAR_NAME} are
// expanded. Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if strings.HasSuffix(path, ".toml") {
		if err := toml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in unset fields.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Documentation.Timeout == 0 {
		c.Documentation.Timeout = 30 * time.Second
	}
	if c.Documentation.Cache.TTL == 0 {
		c.Documentation.Cache.TTL = time.Hour
	}
	if c.Documentation.Cache.MemoEntries == 0 {
		c.Documentation.Cache.MemoEntries = 1024
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Documentation.TimeoutRaw != "" {
		cfg.Documentation.Timeout, err = time.ParseDuration(cfg.Documentation.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing documentation.timeout %q: %w", cfg.Documentation.TimeoutRaw, err)
		}
	}

	if cfg.Documentation.Cache.TTLRaw != "" {
		cfg.Documentation.Cache.TTL, err = time.ParseDuration(cfg.Documentation.Cache.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing documentation.cache.ttl %q: %w", cfg.Documentation.Cache.TTLRaw, err)
		}
	}

	return nil
}
