package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

const (
	StorageFile     = "file"
	StorageBolt     = "bolt"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	BaseURL         string `env:"BASE_URL"`
	LogLevel        string `env:"LOG_LEVEL"`
	StorageKind     string `env:"STORAGE_KIND"`
	FileStoragePath string `env:"FILE_STORAGE_PATH"`
	DatabaseDSN     string `env:"DATABASE_DSN"`
}

// NewConfig builds the configuration from args (without the program name),
// then the environment, then defaults. Environment wins over flags.
func NewConfig(args []string) (*Config, error) {
	cfg := &Config{}
	defaults := &Config{
		BaseURL:         "http://short.ly/",
		LogLevel:        "info",
		StorageKind:     StorageFile,
		FileStoragePath: "url_mappings.dat",
	}

	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)
	fs.StringVar(&cfg.BaseURL, "base_url", defaults.BaseURL, "Base URL of short links")
	fs.StringVar(&cfg.LogLevel, "log_level", defaults.LogLevel, "Log level")
	fs.StringVar(&cfg.StorageKind, "storage", defaults.StorageKind, "Storage backend: file, bolt, postgres or memory")
	fs.StringVar(&cfg.FileStoragePath, "file_storage_path", defaults.FileStoragePath, "File storage path")
	fs.StringVar(&cfg.DatabaseDSN, "database_dsn", defaults.DatabaseDSN, "PostgreSQL DSN")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	// use env
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	// use defaults
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.StorageKind == "" {
		cfg.StorageKind = defaults.StorageKind
	}
	if cfg.FileStoragePath == "" {
		cfg.FileStoragePath = defaults.FileStoragePath
	}
	cfg.StorageKind = strings.ToLower(cfg.StorageKind)

	// validate
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := validateStorage(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateLogLevel(logLevel string) error {
	logLevel = strings.ToLower(logLevel)

	var level zapcore.Level
	err := level.UnmarshalText([]byte(logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}
	return nil
}

func validateBaseURL(baseURL string) error {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid Base URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return errors.New("empty Scheme or Host")
	}
	return nil
}

func validateStorage(cfg *Config) error {
	switch cfg.StorageKind {
	case StorageFile, StorageBolt:
		return validateFileStoragePath(cfg.FileStoragePath)
	case StoragePostgres:
		if cfg.DatabaseDSN == "" {
			return errors.New("database DSN is required for postgres storage")
		}
		return nil
	case StorageMemory:
		return nil
	default:
		return fmt.Errorf("unknown storage kind: %s", cfg.StorageKind)
	}
}

func validateFileStoragePath(path string) error {
	// check if the path is empty
	if path == "" {
		return errors.New("empty file storage path")
	}

	// check if the path is a dir
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("file storage path cannot be a directory: %s", path)
		}
	}
	return nil
}
