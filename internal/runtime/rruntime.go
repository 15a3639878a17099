package runtime

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/rproc-labs/rproc/internal/rutils"
)

// ErrUnsupportedR is returned when the interpreter version does not satisfy
// a script's requires_r constraint.
var ErrUnsupportedR = errors.New("unsupported R version")

// RRuntime runs algorithms with Rscript.
type RRuntime struct {
	Interpreter *rutils.Interpreter
	// WorkDir holds the rendered program and default outputs. Empty creates
	// a temporary directory per run.
	WorkDir string
	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// Version probes the interpreter version. Nil runs Interpreter.Version.
	Version func(ctx context.Context) (*semver.Version, error)
}

// Run renders alg with inputs and executes it with `Rscript --vanilla`.
// A non-zero exit is reported through Output.ExitCode, not as an error.
func (r *RRuntime) Run(ctx context.Context, alg *rscript.Algorithm, inputs map[string]string) (*Output, error) {
	if r.Interpreter == nil {
		return nil, fmt.Errorf("no R interpreter configured")
	}

	if alg.RequiresR != "" {
		if err := r.checkVersion(ctx, alg); err != nil {
			return nil, err
		}
	}

	workDir := r.WorkDir
	if workDir == "" {
		dir, err := os.MkdirTemp("", "rproc-"+alg.CommandLineName()+"-")
		if err != nil {
			return nil, fmt.Errorf("creating work directory: %w", err)
		}
		workDir = dir
	} else if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	plan, err := ResolveInputs(alg, inputs, workDir)
	if err != nil {
		return nil, err
	}

	plotsDir := filepath.Join(workDir, "plots")
	if alg.ShowPlots {
		if err := os.MkdirAll(plotsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating plots directory: %w", err)
		}
	}
	for _, o := range alg.Outputs {
		if o.Kind == rscript.OutputDirectory {
			if err := os.MkdirAll(plan.Outputs[o.Name], 0755); err != nil {
				return nil, fmt.Errorf("creating output directory: %w", err)
			}
		}
	}

	program := Render(plan, RenderOptions{LibsUser: r.Interpreter.LibsUser, PlotsDir: plotsDir})
	scriptPath := filepath.Join(workDir, alg.CommandLineName()+".R")
	if err := os.WriteFile(scriptPath, []byte(program), 0644); err != nil {
		return nil, fmt.Errorf("writing R program: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Interpreter.Path, "--vanilla", scriptPath)
	cmd.Dir = workDir
	cmd.Env = os.Environ()
	if r.Interpreter.LibsUser != "" {
		cmd.Env = setEnv(cmd.Env, "R_LIBS_USER", r.Interpreter.LibsUser)
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	err = cmd.Run()

	output := &Output{
		Stdout:     stdoutBuf.String(),
		Stderr:     stderrBuf.String(),
		Values:     make(map[string]string, len(alg.Outputs)),
		ScriptPath: scriptPath,
	}
	for name, path := range plan.Outputs {
		output.Values[name] = path
	}
	for name, v := range parseValues(output.Stdout) {
		output.Values[name] = v
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			output.ExitCode = exitErr.ExitCode()
			return output, nil
		}
		return output, fmt.Errorf("executing R script: %w", err)
	}

	if alg.ShowPlots {
		if err := writePlotsHTML(plan.Outputs[rscript.PlotsOutputName], plotsDir); err != nil {
			return output, err
		}
	}
	return output, nil
}

func (r *RRuntime) checkVersion(ctx context.Context, alg *rscript.Algorithm) error {
	probe := r.Version
	if probe == nil {
		probe = r.Interpreter.Version
	}
	v, err := probe(ctx)
	if err != nil {
		return fmt.Errorf("checking R version: %w", err)
	}
	ok, err := alg.SupportsR(v)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s requires R %s, found %s: %w", alg.ID(), alg.RequiresR, v, ErrUnsupportedR)
	}
	return nil
}

// parseValues collects the number and string outputs reported on stdout.
func parseValues(stdout string) map[string]string {
	values := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		rest, ok := strings.CutPrefix(scanner.Text(), ValueMarker)
		if !ok {
			continue
		}
		if name, v, ok := strings.Cut(rest, "="); ok {
			values[name] = strings.TrimSpace(v)
		}
	}
	return values
}

// writePlotsHTML writes an HTML page embedding every png in plotsDir.
func writePlotsHTML(dest, plotsDir string) error {
	if dest == "" {
		return nil
	}
	pngs, err := filepath.Glob(filepath.Join(plotsDir, "*.png"))
	if err != nil {
		return err
	}
	sort.Strings(pngs)

	var b strings.Builder
	b.WriteString("<html><body>\n")
	for _, p := range pngs {
		fmt.Fprintf(&b, "<p><img src=\"%s\"/></p>\n", html.EscapeString(filepath.ToSlash(p)))
	}
	b.WriteString("</body></html>\n")
	if err := os.WriteFile(dest, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing plots page: %w", err)
	}
	return nil
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

var _ Runtime = (*RRuntime)(nil)
