// Package branding provides compile-time identity values for the CLI.
//
// branding.yaml is embedded with //go:embed; editing it and rebuilding is
// enough to rename the binary, its home directory and its env prefix.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	HomeDir        string `yaml:"home_dir"`
	EnvPrefix      string `yaml:"env_prefix"`
	GoModule       string `yaml:"go_module"`
	ScriptsRepoURL string `yaml:"scripts_repo_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:        "rproc",
			DisplayName:    "rproc",
			Description:    "R script algorithm provider for processing frameworks",
			HomeDir:        ".rproc",
			EnvPrefix:      "RPROC",
			GoModule:       "github.com/rproc-labs/rproc",
			ScriptsRepoURL: "https://github.com/rproc-labs/rscripts.git",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "rproc").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".rproc").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "RPROC").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path.
func GoModule() string { load(); return defaults.GoModule }

// ScriptsRepoURL returns the default git URL of the on-line scripts collection.
func ScriptsRepoURL() string { load(); return defaults.ScriptsRepoURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "RPROC_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
