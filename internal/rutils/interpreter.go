package rutils

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/platform"
)

// RscriptName is the name of the R script front-end binary.
const RscriptName = "Rscript"

// Interpreter describes how to launch R.
type Interpreter struct {
	Path     string
	LibsUser string
}

// ResolveInterpreter locates Rscript. When interpreterSettings is true the
// R_FOLDER setting is used (bin/x64 when R_USE64 is set); otherwise Rscript
// is looked up on PATH.
func ResolveInterpreter(s config.Store, interpreterSettings bool) (*Interpreter, error) {
	if interpreterSettings {
		folder := RFolder(s)
		if folder == "" {
			return nil, fmt.Errorf("the %s setting is not set; point it at your R installation", FolderSetting)
		}
		bin := filepath.Join(folder, "bin")
		if Use64(s) {
			bin = filepath.Join(bin, "x64")
		}
		return &Interpreter{
			Path:     filepath.Join(bin, platform.ExecutableName(RscriptName)),
			LibsUser: RLibs(s),
		}, nil
	}

	path, err := exec.LookPath(RscriptName)
	if err != nil {
		return nil, fmt.Errorf("R is required but %s was not found in PATH: %w", RscriptName, err)
	}
	return &Interpreter{Path: path}, nil
}

var versionPattern = regexp.MustCompile(`version\s+(\d+\.\d+(?:\.\d+)?)`)

// ParseVersionOutput extracts the R version from `Rscript --version` output.
func ParseVersionOutput(out string) (*semver.Version, error) {
	m := versionPattern.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("no R version found in %q", strings.TrimSpace(out))
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parsing R version %q: %w", m[1], err)
	}
	return v, nil
}

// Version runs the interpreter with --version and parses its output.
func (i *Interpreter) Version(ctx context.Context) (*semver.Version, error) {
	out, err := exec.CommandContext(ctx, i.Path, "--version").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("running %s --version: %w\n%s", i.Path, err, strings.TrimSpace(string(out)))
	}
	return ParseVersionOutput(string(out))
}
