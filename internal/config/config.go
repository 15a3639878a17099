package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rproc-labs/rproc/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Dir returns the path to the rproc home directory (~/.rproc/).
// The <PREFIX>_HOME environment variable takes precedence.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.rproc/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// LogPath returns the path to the processing log file.
func LogPath() string {
	return filepath.Join(Dir(), "processing.log")
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}
