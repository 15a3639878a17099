package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/discovery"
	"github.com/rproc-labs/rproc/internal/registry"
	"github.com/rproc-labs/rproc/internal/rutils"
	"github.com/spf13/cobra"
)

var (
	listGroupFilter string
	listJSON        bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded R script algorithms",
	Long:  `List the algorithms discovered in the user scripts folders and the built-in scripts folder.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listGroupFilter, "group", "", "Only list algorithms in this group")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var entries []registry.Summary
	for _, s := range registry.Summarize(a.registry.Algorithms()) {
		if listGroupFilter != "" && !strings.EqualFold(s.Group, listGroupFilter) {
			continue
		}
		entries = append(entries, s)
	}

	if listJSON {
		if entries == nil {
			entries = []registry.Summary{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	if !a.provider.Active() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Provider %q is not active. Run '%s config set %s true' to enable it.\n",
			a.provider.ID(), branding.CLIName(), a.provider.ActivateSetting())
	}
	if len(entries) == 0 {
		if listGroupFilter != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No algorithms matching --group=%s\n", listGroupFilter)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No R scripts found.")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGROUP\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Group, e.SourcePath)
	}
	return w.Flush()
}

// completeAlgorithmIDs completes algorithm ids from the cached index, so
// completion does not parse every script unless the folders changed.
func completeAlgorithmIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store := config.NewStore(configFile)
	folders := discovery.FolderSet{
		User:    rutils.ScriptsFolders(store),
		Builtin: rutils.BuiltinScriptsFolder(),
	}
	summaries, ok := registry.LoadCached(registry.DefaultCachePath(), folders.Folders())
	if !ok {
		a, err := loadApp(io.Discard)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		summaries = registry.Summarize(a.registry.Algorithms())
	}
	var ids []string
	for _, s := range summaries {
		if strings.HasPrefix(s.ID, toComplete) {
			ids = append(ids, s.ID+"\t"+s.Name)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
