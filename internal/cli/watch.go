package cli

import (
	"context"
	"fmt"

	"github.com/gadgetry/gadgetc/internal/logging"
	"github.com/gadgetry/gadgetc/internal/watch"
	"github.com/spf13/cobra"
)

func init() {
	addOutputFlags(watchCmd.Flags())
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before rebuilding")
	rootCmd.AddCommand(watchCmd)
}

var watchDebounce = watch.DefaultDebounce

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever sources, the manifest or the config change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := logging.FromContext(ctx)

		cfg, err := loadProject()
		if err != nil {
			return err
		}
		applyBuildFlags(cfg)

		rebuild := func(ctx context.Context, changed []string) error {
			// Settings may have changed on disk; --manifest and flags still win.
			next, err := loadProject()
			if err != nil {
				return err
			}
			applyBuildFlags(next)
			logger.Info("rebuilding", "changed", len(changed))
			return runBuild(ctx, next, cmd.OutOrStdout())
		}

		if err := rebuild(ctx, nil); err != nil {
			logger.Error("build failed", "err", err)
		}

		wcfg := watch.ForBuild(cfg)
		wcfg.Debounce = watchDebounce
		wcfg.OnChange = rebuild
		w, err := watch.New(wcfg)
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		logger.Info("watching for changes", "dir", cfg.Dir)
		return w.Run(ctx)
	},
}
