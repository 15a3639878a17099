package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/discovery"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/rproc-labs/rproc/internal/rutils"
	"github.com/spf13/cobra"
)

var (
	okTag   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("[ OK ]")
	missTag = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("[MISS]")
	failTag = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("[FAIL]")
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the R scripts setup",
	Long:  `Check the configuration, scripts folders, scripts and the R interpreter.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(io.Discard)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		failed := 0

		fmt.Fprintln(w, "Configuration:")
		if _, err := os.Stat(config.Dir()); err != nil {
			fmt.Fprintf(w, "  %s %s does not exist\n", missTag, config.Dir())
		} else {
			fmt.Fprintf(w, "  %s %s\n", okTag, config.Dir())
		}
		if a.provider.Active() {
			fmt.Fprintf(w, "  %s provider %q is active\n", okTag, a.provider.ID())
		} else {
			fmt.Fprintf(w, "  %s provider %q is not active\n", missTag, a.provider.ID())
			fmt.Fprintf(w, "         Run '%s config set %s true' to enable it\n", branding.CLIName(), a.provider.ActivateSetting())
		}

		fmt.Fprintln(w, "\nScripts folders:")
		folders := a.provider.Folders()
		for _, f := range folders.Folders() {
			if info, err := os.Stat(f); err != nil || !info.IsDir() {
				fmt.Fprintf(w, "  %s %s (skipped)\n", missTag, f)
				continue
			}
			fmt.Fprintf(w, "  %s %s\n", okTag, f)
		}

		fmt.Fprintln(w, "\nScripts:")
		problems := &processinglog.Memory{}
		algs := discovery.NewLoader(rscript.Parser{}, problems).Discover(folders.Folders())
		fmt.Fprintf(w, "  %s %d algorithms loaded\n", okTag, len(algs))
		for _, e := range problems.Entries() {
			failed++
			fmt.Fprintf(w, "  %s %s\n", failTag, e.Message)
		}

		fmt.Fprintln(w, "\nR interpreter:")
		if !checkInterpreter(cmd.Context(), w, a) {
			failed++
		}

		fmt.Fprintln(w, "\nTools:")
		if path, err := exec.LookPath("git"); err != nil {
			fmt.Fprintf(w, "  %s git not found (needed by '%s fetch')\n", missTag, branding.CLIName())
		} else {
			fmt.Fprintf(w, "  %s git (%s)\n", okTag, path)
		}

		if failed > 0 {
			return fmt.Errorf("%d problems found", failed)
		}
		return nil
	},
}

func checkInterpreter(ctx context.Context, w io.Writer, a *app) bool {
	interp, err := rutils.ResolveInterpreter(a.store, a.provider.InterpreterSettings())
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", failTag, err)
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	v, err := interp.Version(ctx)
	if err != nil {
		fmt.Fprintf(w, "  %s %s: %v\n", failTag, interp.Path, err)
		return false
	}
	fmt.Fprintf(w, "  %s %s (R %s)\n", okTag, interp.Path, v)
	if interp.LibsUser != "" {
		fmt.Fprintf(w, "  %s R_LIBS_USER=%s\n", okTag, interp.LibsUser)
	}
	return true
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
