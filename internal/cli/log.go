package cli

import (
	"fmt"
	"strings"

	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/spf13/cobra"
)

var (
	logTail     int
	logSeverity string
)

func init() {
	logCmd.Flags().IntVarP(&logTail, "tail", "n", 50, "Number of most recent entries to show (0 for all)")
	logCmd.Flags().StringVar(&logSeverity, "severity", "", "Only show entries of this severity (error, warning, info)")
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the processing log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := processinglog.ReadFile(config.LogPath())
		if err != nil {
			return err
		}

		if logSeverity != "" {
			want := processinglog.Severity(strings.ToUpper(logSeverity))
			filtered := entries[:0]
			for _, e := range entries {
				if e.Severity == want {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
		if logTail > 0 && len(entries) > logTail {
			entries = entries[len(entries)-logTail:]
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Processing log is empty.")
			return nil
		}

		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-7s %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Severity, e.Message)
		}
		return nil
	},
}
