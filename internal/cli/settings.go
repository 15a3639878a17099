package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/rproc-labs/rproc/internal/config"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "List the settings registered by providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "GROUP\tNAME\tTYPE\tVALUE\tDESCRIPTION")
		for _, s := range a.store.Settings() {
			value := config.String(a.store, s.Name)
			if value == "" {
				value = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Group, s.Name, s.ValueType, value, s.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}
