package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to every environment override (FLIPPER_PORT, ...).
const envPrefix = "FLIPPER_"

// Config holds application settings.
type Config struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`

	// Wiki prices API.
	APIBaseURL  string        `yaml:"api_base_url" json:"api_base_url"`
	IconBaseURL string        `yaml:"icon_base_url" json:"icon_base_url"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	Retries     int           `yaml:"retries" json:"retries"`
	RatePerSec  float64       `yaml:"rate_per_sec" json:"rate_per_sec"`

	// DBPath is the SQLite history cache. Empty keeps the cache in memory.
	DBPath          string        `yaml:"db_path" json:"db_path"`
	HistoryCacheTTL time.Duration `yaml:"history_cache_ttl" json:"history_cache_ttl"`

	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Host:            "127.0.0.1",
		Port:            13380,
		APIBaseURL:      "https://prices.runescape.wiki/api/v1/osrs",
		IconBaseURL:     "https://static.runelite.net/cache/item/icon",
		UserAgent:       "OSRS-Flip-Finder-Enzo",
		Timeout:         30 * time.Second,
		Retries:         2,
		RatePerSec:      5,
		DBPath:          "flipper.db",
		HistoryCacheTTL: time.Hour,
		LogLevel:        "info",
	}
}

// Load builds the effective config: defaults, then the YAML file at path
// (skipped when empty or missing), then .env, then FLIPPER_* variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	// Missing .env is normal.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Default().Timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("HOST", &c.Host)
	str("API_BASE_URL", &c.APIBaseURL)
	str("ICON_BASE_URL", &c.IconBaseURL)
	str("USER_AGENT", &c.UserAgent)
	str("DB_PATH", &c.DBPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)

	if v, ok := lookup(envPrefix + "PORT"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sPORT: %w", envPrefix, err)
		}
		c.Port = n
	}
	if v, ok := lookup(envPrefix + "RETRIES"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sRETRIES: %w", envPrefix, err)
		}
		c.Retries = n
	}
	if v, ok := lookup(envPrefix + "RATE_PER_SEC"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%sRATE_PER_SEC: %w", envPrefix, err)
		}
		c.RatePerSec = f
	}
	if v, ok := lookup(envPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(envPrefix + "HISTORY_CACHE_TTL"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sHISTORY_CACHE_TTL: %w", envPrefix, err)
		}
		c.HistoryCacheTTL = d
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is empty")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", c.Retries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", c.Timeout)
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
