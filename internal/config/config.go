package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	FileName      = "tablekeep.config.json"
	DefaultURLEnv = "TABLEKEEP_DATABASE_URL"
	sqliteFile    = "TableStateDB.sqlite"
)

type Config struct {
	Version    string  `json:"version" mapstructure:"version"`
	DataDir    string  `json:"data_dir" mapstructure:"data_dir"`
	ExportPath string  `json:"export_path" mapstructure:"export_path"`
	BackupPath string  `json:"backup_path,omitempty" mapstructure:"backup_path"`
	LogLevel   string  `json:"log_level" mapstructure:"log_level"`
	Storage    Storage `json:"storage" mapstructure:"storage"`
	Studio     Studio  `json:"studio" mapstructure:"studio"`
	Rows       Rows    `json:"rows" mapstructure:"rows"`
}

type Storage struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Studio struct {
	Port int `json:"port" mapstructure:"port"`
}

type Rows struct {
	// RequireComplete rejects rows that leave a column blank.
	RequireComplete bool `json:"require_complete" mapstructure:"require_complete"`
}

var supportedProviders = []string{"sqlite", "sqlite3", "postgresql", "postgres", "mysql"}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = ".tablekeep"
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = "exports"
	}
	if cfg.BackupPath == "" {
		cfg.BackupPath = filepath.Join(cfg.DataDir, "backups")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "sqlite"
	}
	if cfg.Storage.URLEnv == "" {
		cfg.Storage.URLEnv = DefaultURLEnv
	}
	if cfg.Studio.Port == 0 {
		cfg.Studio.Port = 5555
	}

	return &cfg, nil
}

// GetDatabaseURL reads the connection URL from the configured environment
// variable. SQLite falls back to a file in the data directory.
func (c *Config) GetDatabaseURL() (string, error) {
	if dbURL := os.Getenv(c.Storage.URLEnv); dbURL != "" {
		return dbURL, nil
	}
	if c.IsSQLite() {
		return "sqlite://" + filepath.Join(c.DataDir, sqliteFile), nil
	}
	return "", fmt.Errorf("database URL not found in environment variable %s", c.Storage.URLEnv)
}

func (c *Config) IsSQLite() bool {
	return c.Storage.Provider == "sqlite" || c.Storage.Provider == "sqlite3"
}

func (c *Config) Level() (slog.Level, error) {
	return ParseLevel(c.LogLevel)
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.ExportPath,
		c.BackupPath,
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (c *Config) Validate() error {
	if !slices.Contains(supportedProviders, c.Storage.Provider) {
		return fmt.Errorf("unsupported storage provider: %s. Supported providers: %v", c.Storage.Provider, supportedProviders)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}

	if c.ExportPath == "" {
		return fmt.Errorf("export_path cannot be empty")
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.Studio.Port < 1 || c.Studio.Port > 65535 {
		return fmt.Errorf("studio.port must be between 1 and 65535, got %d", c.Studio.Port)
	}

	return nil
}
