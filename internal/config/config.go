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

const configPathEnv = "CONFIG_FILE"

// Config defines the tariff service configuration. Values come from an
// optional YAML file pointed at by CONFIG_FILE, overridden per-key by
// environment variables.
type Config struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr        string `yaml:"addr"`
		Password    string `yaml:"password"`
		SnapshotTTL int    `yaml:"snapshot_ttl_seconds"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Tariff struct {
		Timezone    string `yaml:"timezone"`
		CalendarDir string `yaml:"calendar_dir"`
	} `yaml:"tariff"`
	Ticker struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"ticker"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8084"
	cfg.Redis.SnapshotTTL = 60
	cfg.Tariff.Timezone = "Asia/Taipei"
	cfg.Ticker.IntervalSeconds = 60

	if path := os.Getenv(configPathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	overrideString(&cfg.HTTP.Port, "TARIFF_HTTP_PORT")
	overrideString(&cfg.Database.DSN, "TARIFF_POSTGRES_DSN")
	overrideString(&cfg.Redis.Addr, "TARIFF_REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "TARIFF_REDIS_PASSWORD")
	overrideString(&cfg.Auth.JWTSecret, "TARIFF_JWT_SECRET")
	overrideString(&cfg.Tariff.Timezone, "TARIFF_TIMEZONE")
	overrideString(&cfg.Tariff.CalendarDir, "TARIFF_CALENDAR_DIR")
	if err := overrideInt(&cfg.Redis.SnapshotTTL, "TARIFF_SNAPSHOT_TTL_SECONDS"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.Ticker.IntervalSeconds, "TARIFF_TICKER_INTERVAL_SECONDS"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8084"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// SnapshotTTL returns the snapshot cache lifetime.
func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.Redis.SnapshotTTL) * time.Second
}

// TickerInterval returns how often the live rate ticker broadcasts.
func (c *Config) TickerInterval() time.Duration {
	return time.Duration(c.Ticker.IntervalSeconds) * time.Second
}

func overrideString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		*target = val
	}
}

func overrideInt(target *int, key string) error {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = parsed
	return nil
}
