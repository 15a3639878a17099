package cli

import (
	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configFile string
	iconsDir   string
	iconTheme  string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` discovers R script algorithms (.rsx files) in the configured
scripts folders and runs them through Rscript.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&iconsDir, "icons-dir", "", "Directory holding icon themes")
	rootCmd.PersistentFlags().StringVar(&iconTheme, "theme", "", "Icon theme name")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors to the terminal")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	defer closeApp()
	return rootCmd.Execute()
}
