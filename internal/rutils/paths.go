package rutils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/rproc-labs/rproc/internal/config"
)

// Setting names owned by the R provider.
const (
	ScriptsFolderSetting = "R_SCRIPTS_FOLDER"
	FolderSetting        = "R_FOLDER"
	LibsUserSetting      = "R_LIBS_USER"
	Use64Setting         = "R_USE64"
)

// Directory names under the rproc home directory.
const (
	ScriptsDir  = "rscripts"
	LibsDir     = "rlibs"
	BuiltinDir  = "scripts"
	CollectDir  = "collection"
	DirPermUser = 0o755
)

// DefaultScriptsFolder returns the user scripts folder used when
// R_SCRIPTS_FOLDER is not set: <PREFIX>_SCRIPTS or ~/.rproc/rscripts.
func DefaultScriptsFolder() string {
	if v := os.Getenv(branding.EnvVar("SCRIPTS")); v != "" {
		return v
	}
	return filepath.Join(config.Dir(), ScriptsDir)
}

// DefaultLibsFolder returns the default R user library folder.
func DefaultLibsFolder() string {
	return filepath.Join(config.Dir(), LibsDir)
}

// BuiltinScriptsFolder returns the folder of scripts shipped with the
// binary: <PREFIX>_BUILTIN_SCRIPTS or <executable dir>/scripts.
func BuiltinScriptsFolder() string {
	if v := os.Getenv(branding.EnvVar("BUILTIN_SCRIPTS")); v != "" {
		return v
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), BuiltinDir)
}

// ScriptsFolders returns the configured user scripts folders, or the default
// folder when none are configured.
func ScriptsFolders(s config.Store) []string {
	folders := config.SplitFolders(config.String(s, ScriptsFolderSetting))
	if len(folders) == 0 {
		return []string{DefaultScriptsFolder()}
	}
	return folders
}

// RFolder returns the configured R installation folder ("" when unset).
func RFolder(s config.Store) string {
	return config.String(s, FolderSetting)
}

// RLibs returns the R user library folder.
func RLibs(s config.Store) string {
	if v := config.String(s, LibsUserSetting); v != "" {
		return v
	}
	return DefaultLibsFolder()
}

// Use64 reports whether the 64-bit R binaries should be used.
func Use64(s config.Store) bool {
	return config.Bool(s, Use64Setting)
}

// EnsureScriptsFolder creates the first user scripts folder and returns it.
func EnsureScriptsFolder(s config.Store) (string, error) {
	folder := ScriptsFolders(s)[0]
	if err := os.MkdirAll(folder, DirPermUser); err != nil {
		return "", fmt.Errorf("creating scripts folder %s: %w", folder, err)
	}
	return folder, nil
}

// IsUserScript reports whether path lies inside one of the user scripts
// folders.
func IsUserScript(s config.Store, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, folder := range ScriptsFolders(s) {
		root, err := filepath.Abs(folder)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel) {
			return true
		}
	}
	return false
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && os.IsPathSeparator(rel[2])
}
