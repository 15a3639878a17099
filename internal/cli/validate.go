package cli

import (
	"fmt"
	"strings"

	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.rsx>...",
	Short: "Validate R script headers",
	Long:  `Parse the header of each script and validate it against the algorithm schema.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invalid := 0
		for _, path := range args {
			result, err := rscript.ValidateFile(path)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  [FAIL] %s: %v\n", path, err)
				invalid++
				continue
			}
			if result.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "  [ OK ] %s\n", path)
				continue
			}
			invalid++
			fmt.Fprintf(cmd.OutOrStdout(), "  [FAIL] %s\n", path)
			for _, line := range strings.Split(result.Summary(), "\n") {
				fmt.Fprintf(cmd.OutOrStdout(), "         %s\n", line)
			}
		}
		if invalid > 0 {
			return fmt.Errorf("%d of %d scripts are invalid", invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
