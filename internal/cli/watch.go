package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/provider"
	"github.com/rproc-labs/rproc/internal/watch"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before reloading")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload scripts whenever the scripts folders change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		w, err := watch.New(watch.Config{
			Folders:  a.provider.Folders().Folders(),
			Debounce: watchDebounce,
			Stderr:   cmd.ErrOrStderr(),
			OnChange: func(ctx context.Context, changed []string) error {
				if err := a.registry.Reload(provider.ID); err != nil {
					return err
				}
				a.log.Add(processinglog.SeverityInfo, fmt.Sprintf("%d changes, %d algorithms loaded", len(changed), len(a.provider.Algorithms())))
				return nil
			},
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %d folders (%d algorithms loaded). Press Ctrl+C to stop.\n",
			len(w.Roots()), len(a.provider.Algorithms()))
		return w.Run(ctx)
	},
}
