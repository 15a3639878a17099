package cli

import (
	"fmt"
	"strings"

	"github.com/rproc-labs/rproc/internal/actions"
	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/spf13/cobra"
)

var (
	createGroup     string
	createTemplate  string
	createOutputDir string
	createEdit      bool
)

func init() {
	createCmd.Flags().StringVar(&createGroup, "group", "", "Algorithm group (default \"User R scripts\")")
	createCmd.Flags().StringVar(&createTemplate, "template", actions.TemplateVector, "Template: "+strings.Join(actions.Templates, ", "))
	createCmd.Flags().StringVar(&createOutputDir, "output-dir", "", "Output directory (default: first user scripts folder)")
	createCmd.Flags().BoolVar(&createEdit, "edit", false, "Open the new script in $EDITOR")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create new R script",
	Long: `Create a new R script from a built-in template in the first user scripts folder.

Examples:
  ` + branding.CLIName() + ` create "Buffer zone"
  ` + branding.CLIName() + ` create "Height histogram" --template plot --group Statistics`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		res, err := a.actions.Create(actions.CreateOptions{
			Name:      args[0],
			Group:     createGroup,
			Template:  createTemplate,
			OutputDir: createOutputDir,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", res.Path)
		for _, w := range res.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
		}
		if createEdit {
			return a.actions.Edit(cmd.Context(), res.Path, actions.EditOptions{})
		}
		return nil
	},
}
