package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"scanpress/internal/common"
)

// Config holds application configuration
type Config struct {
	AppDataDir   string
	DatabasePath string
	Version      string
	Logger       *slog.Logger
}

// New creates a new configuration instance. version is the contents of
// the VERSION file embedded by the caller.
func New(version string) *Config {
	cfg := &Config{
		Version: strings.TrimSpace(version),
		Logger:  slog.Default(),
	}

	cfg.setupDirectories()

	return cfg
}

func (c *Config) setupDirectories() {
	// App data directory holds the run history database
	c.AppDataDir = getAppDataDir()
	os.MkdirAll(c.AppDataDir, common.DefaultFilePermissions)

	c.DatabasePath = filepath.Join(c.AppDataDir, "database.sqlite3")
}

func getAppDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ScanPress")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".scanpress")
}
