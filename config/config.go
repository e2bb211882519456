// ABOUTME: Runtime configuration loaded from .env and CRM_* environment variables
// ABOUTME: Resolves storage paths under the XDG data directory and builds the logger
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const AppName = "crmhtml"

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

type Config struct {
	Backend      string `env:"CRM_BACKEND,       default=sqlite"`
	DBPath       string `env:"CRM_DB_PATH"`
	KVDir        string `env:"CRM_KV_DIR"`
	LogLevel     string `env:"CRM_LOG_LEVEL,     default=info"`
	UpcomingDays int    `env:"CRM_UPCOMING_DAYS, default=2"`
	FollowupDays int    `env:"CRM_FOLLOWUP_DAYS, default=14"`
	// User signs this user in for the duration of a command.
	User string `env:"CRM_USER"`
	// RefreshSchedule is the cron spec for re-deriving notifications in
	// the MCP server.
	RefreshSchedule string `env:"CRM_REFRESH_SCHEDULE, default=@every 1m"`
}

// Load reads an optional .env file from the working directory and then the
// process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	switch c.Backend {
	case BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendBadger)
	}
	if c.UpcomingDays < 0 || c.FollowupDays < 0 {
		return fmt.Errorf("notification windows must not be negative")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(DataDir(), "crm.db")
	}
	if c.KVDir == "" {
		c.KVDir = filepath.Join(DataDir(), "kv")
	}
	return nil
}

// DataDir is where the CRM keeps its files by default.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Notify returns the notification windows for the engine.
func (c *Config) Notify() *notify.Options {
	return &notify.Options{UpcomingDays: c.UpcomingDays, FollowupDays: c.FollowupDays}
}

// NewLogger builds a logger writing to w at the given level.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          AppName,
		ReportTimestamp: lvl == log.DebugLevel,
	}), nil
}

// Logger is NewLogger on stderr, falling back to info on a bad level.
func (c *Config) Logger() *log.Logger {
	logger, err := NewLogger(os.Stderr, c.LogLevel)
	if err != nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: AppName})
		logger.Warn("falling back to info logging", "err", err)
	}
	return logger
}
