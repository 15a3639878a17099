package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rproc-labs/rproc/internal/platform"
)

// EditOptions configures Edit.
type EditOptions struct {
	// Editor overrides $EDITOR.
	Editor string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Editor returns the editor command: $EDITOR, or vi (notepad on Windows).
func Editor() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	if platform.IsWindows() {
		return "notepad"
	}
	return "vi"
}

// Edit opens a user script in an editor and reloads once the editor exits.
func (s *Service) Edit(ctx context.Context, path string, opts EditOptions) error {
	if err := s.checkUserScript(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("opening script: %w", err)
	}

	editor := opts.Editor
	if editor == "" {
		editor = Editor()
	}
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return fmt.Errorf("no editor configured")
	}

	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}
	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running editor %s: %w", editor, err)
	}
	return s.refresh()
}
