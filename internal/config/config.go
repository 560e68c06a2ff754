package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config carries the process-wide settings. Values come from a .env file
// (if present), then PWSTORE_* environment variables, then command-line
// flags; flags win.
type Config struct {
	DBPath         string `env:"PWSTORE_DB"`
	Backend        string `env:"PWSTORE_BACKEND"`
	PassphraseFile string `env:"PWSTORE_PASSPHRASE_FILE"`
	LogLevel       string `env:"PWSTORE_LOG_LEVEL"`
	LogFormat      string `env:"PWSTORE_LOG_FORMAT"`
	Version        bool   `env:"-"` // flag only
}

// EnvPassphrase names the environment variable consulted before any
// interactive passphrase prompt.
const EnvPassphrase = "PWSTORE_MASTER_PASSPHRASE"

// Supported storage backends.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// New parses configuration from the environment and args (typically
// os.Args[1:]). The remaining non-flag arguments (the subcommand and its
// arguments) are returned alongside the config.
func New(args []string) (*Config, []string, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	fs := flag.NewFlagSet("pwstore", flag.ContinueOnError)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the store database file")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend (bolt or sqlite)")
	fs.StringVar(&cfg.PassphraseFile, "passphrase-file", cfg.PassphraseFile, "file containing the master passphrase")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")
	fs.BoolVar(&cfg.Version, "version", cfg.Version, "show version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "pwstore.db"
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendBolt
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	if cfg.Backend != BackendBolt && cfg.Backend != BackendSQLite {
		return nil, nil, fmt.Errorf("unknown backend: %s (want %s or %s)", cfg.Backend, BackendBolt, BackendSQLite)
	}

	return cfg, fs.Args(), nil
}
