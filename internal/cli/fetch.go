package cli

import (
	"fmt"

	"github.com/rproc-labs/rproc/internal/actions"
	"github.com/spf13/cobra"
)

var fetchForce bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "Update even if the collection was fetched recently")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Get R scripts from on-line scripts collection",
	Long: `Clone or update the on-line R scripts collection into the first user scripts
folder. The repository is taken from the SCRIPTS_REPO_URL environment variable,
the scripts_repo config key, or the built-in default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Fetching scripts from %s...\n", actions.RepoURL(a.store))
		res, err := a.actions.Fetch(cmd.Context(), actions.FetchOptions{Force: fetchForce})
		if err != nil {
			return err
		}

		switch {
		case res.Skipped:
			fmt.Fprintf(cmd.OutOrStdout(), "Collection at %s is up to date (use --force to update).\n", res.Dir)
		case res.Cloned:
			fmt.Fprintf(cmd.OutOrStdout(), "Cloned collection into %s.\n", res.Dir)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "Updated collection at %s.\n", res.Dir)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d algorithms loaded.\n", len(a.provider.Algorithms()))
		return nil
	},
}
