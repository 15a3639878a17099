package cli

import (
	"fmt"
	"strconv"

	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/rproc-labs/rproc/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write settings stored at ~/` + branding.HomeDir() + `/config.yaml.
Values can be overridden with ` + branding.EnvPrefix() + `_<NAME> environment variables.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		key := args[0]
		var value any = args[1]
		if s, ok := a.store.Setting(key); ok && s.ValueType == config.TypeBool {
			b, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("setting %s expects true or false, got %q", key, args[1])
			}
			value = b
		}
		if err := a.store.SetValue(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.String(a.store, args[0]))
		return nil
	},
}
