package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Show the R scripts provider",
	Long:  `Show the provider identity, activation state, scripts folders and actions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		p := a.provider
		out := cmd.OutOrStdout()

		icon := p.SVGIconPath()
		if icon == "" {
			icon = "-"
		}
		state := "inactive"
		if p.Active() {
			state = "active"
		}

		fmt.Fprintf(out, "ID:          %s\n", p.ID())
		fmt.Fprintf(out, "Name:        %s\n", p.Name())
		fmt.Fprintf(out, "Icon:        %s\n", icon)
		fmt.Fprintf(out, "State:       %s (%s)\n", state, p.ActivateSetting())
		fmt.Fprintf(out, "Algorithms:  %d\n", len(p.Algorithms()))

		folders := p.Folders()
		fmt.Fprintf(out, "User folders:\n")
		for _, f := range folders.User {
			fmt.Fprintf(out, "  %s\n", f)
		}
		if folders.Builtin != "" {
			fmt.Fprintf(out, "Built-in folder:\n  %s\n", folders.Builtin)
		}

		fmt.Fprintln(out, "Actions:")
		for _, act := range p.Actions() {
			fmt.Fprintf(out, "  %-50s %s %s\n", act.Name, cmd.Root().Name(), act.Command)
		}
		var ctx []string
		seen := map[string]bool{}
		for _, alg := range p.Algorithms() {
			for _, act := range p.ContextMenuActions(alg) {
				if !seen[act.Name] {
					seen[act.Name] = true
					ctx = append(ctx, fmt.Sprintf("%s %s <id>", cmd.Root().Name(), act.Command))
				}
			}
		}
		if len(ctx) > 0 {
			fmt.Fprintf(out, "Script actions (user scripts only):\n  %s\n", strings.Join(ctx, "\n  "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providerCmd)
}
