package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage backends for the progress slot.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"NEGERI_PORT"`
	} `yaml:"server"`
	Storage struct {
		Backend string `yaml:"backend" env:"NEGERI_STORAGE_BACKEND"`
		Key     string `yaml:"key" env:"NEGERI_STORAGE_KEY"`
		Path    string `yaml:"path" env:"NEGERI_STORAGE_PATH"`
	} `yaml:"storage"`
	Persistence struct {
		Debounce      string `yaml:"debounce"`
		RetryInitial  string `yaml:"retryInitial"`
		RetryAttempts uint   `yaml:"retryAttempts"`
	} `yaml:"persistence"`
	Redis struct {
		Addr     string `yaml:"addr" env:"NEGERI_REDIS_ADDR"`
		Password string `yaml:"password" env:"NEGERI_REDIS_PASSWORD"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"NEGERI_POSTGRES_URL"`
	} `yaml:"postgres"`
	Content struct {
		Path     string `yaml:"path" env:"NEGERI_CONTENT_PATH"`
		TTL      string `yaml:"ttl"`
		RedisTTL string `yaml:"redisTTL"`
	} `yaml:"content"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Storage.Backend = BackendFile
	cfg.Storage.Key = "gameProgress"
	cfg.Storage.Path = "data"
	cfg.Persistence.Debounce = "1s"
	cfg.Persistence.RetryInitial = "1s"
	cfg.Persistence.RetryAttempts = 3
	return cfg
}

// Load reads YAML config from path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
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
