package platform

import (
	"os"
	"runtime"
	"strconv"

	"github.com/rproc-labs/rproc/internal/branding"
)

// IsWindows reports whether the binary runs on Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// NeedsInterpreterSettings reports whether the R folder, R user library and
// 64-bit settings apply. They do on Windows, where R is rarely on PATH.
// <PREFIX>_INTERPRETER_SETTINGS=true|false overrides the OS check.
func NeedsInterpreterSettings() bool {
	if v := os.Getenv(branding.EnvVar("INTERPRETER_SETTINGS")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return IsWindows()
}

// ExecutableName appends ".exe" to name on Windows.
func ExecutableName(name string) string {
	if IsWindows() {
		return name + ".exe"
	}
	return name
}
