package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rproc-labs/rproc/internal/actions"
	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/spf13/cobra"
)

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
}

var editCmd = &cobra.Command{
	Use:               "edit <id|path>",
	Short:             "Edit script",
	Long:              `Open a user script in $EDITOR and reload the scripts when the editor exits.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeAlgorithmIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		path, err := resolveScript(a, args[0])
		if err != nil {
			return err
		}
		return a.actions.Edit(cmd.Context(), path, actions.EditOptions{
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:               "delete <id|path>",
	Short:             "Delete script",
	Long:              `Delete a user script and its help file.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeAlgorithmIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		path, err := resolveScript(a, args[0])
		if err != nil {
			return err
		}
		if !deleteYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete %s? [y/N] ", path)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}
		if err := a.actions.Delete(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", path)
		return nil
	},
}

// resolveScript turns an existing file path or an algorithm id into a
// script path. Ids without a provider prefix are looked up in "r".
func resolveScript(a *app, arg string) (string, error) {
	if strings.HasSuffix(arg, rscript.Suffix) {
		if _, err := os.Stat(arg); err == nil {
			return filepath.Abs(arg)
		}
	}
	id := arg
	if !strings.Contains(id, ":") {
		id = rscript.IDPrefix + id
	}
	alg, _, err := a.registry.Algorithm(id)
	if err != nil {
		return "", err
	}
	return alg.SourcePath, nil
}
