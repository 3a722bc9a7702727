package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"CHEM_SERVER_PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"CHEM_REDIS_ADDR"`
		Password string `yaml:"password" env:"CHEM_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"CHEM_REDIS_DB"`
		TTL      string `yaml:"ttl" env:"CHEM_REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"CHEM_POSTGRES_URL"`
	} `yaml:"postgres"`
	Catalog struct {
		TTL string `yaml:"ttl" env:"CHEM_CATALOG_TTL"`
		// Path is a JSON, CSV or XLSX file used when Postgres is not configured.
		Path      string `yaml:"path" env:"CHEM_CATALOG_PATH"`
		BagSize   int    `yaml:"bag_size" env:"CHEM_CATALOG_BAG_SIZE"`
		SharedBag bool   `yaml:"shared_bag" env:"CHEM_CATALOG_SHARED_BAG"`
	} `yaml:"catalog"`
	Game struct {
		MaxAttempts int    `yaml:"max_attempts" env:"CHEM_GAME_MAX_ATTEMPTS"`
		MaxDuration string `yaml:"max_duration" env:"CHEM_GAME_MAX_DURATION"`
		// Retain is how long finished sessions stay readable.
		Retain string `yaml:"retain" env:"CHEM_GAME_RETAIN"`
	} `yaml:"game"`
	Logs struct {
		SQLitePath   string `yaml:"sqlite_path" env:"CHEM_LOGS_SQLITE_PATH"`
		MaxPerPlayer int    `yaml:"max_per_player" env:"CHEM_LOGS_MAX_PER_PLAYER"`
	} `yaml:"logs"`
}

// Load reads YAML config from path, then applies CHEM_* environment overrides.
// A missing file is not an error so the service can run from env alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
