package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/gadgetry/gadgetc/internal/build"
	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/logging"
	"github.com/gadgetry/gadgetc/internal/manifest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	buildNoMinify bool
	buildNoRollup bool
	buildClean    bool
)

func init() {
	addOutputFlags(buildCmd.Flags())
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Empty the output directory before writing")
	rootCmd.AddCommand(buildCmd)
}

// addOutputFlags registers the flags shared by build and watch.
func addOutputFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&buildNoMinify, "no-minify", false, "Emit readable output")
	fs.BoolVar(&buildNoRollup, "no-rollup", false, "Write raw compiler output instead of wrapped modules")
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build every enabled gadget",
	Long: `Resolve the manifest, compile each enabled gadget and write the host modules
and the loader to the output directory.

A gadget whose sources are missing is skipped together with every gadget
that requires it; the command then exits non-zero after writing the rest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProject()
		if err != nil {
			return err
		}
		applyBuildFlags(cfg)
		return runBuild(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func applyBuildFlags(cfg *config.Build) {
	if buildNoMinify {
		cfg.Minify = false
	}
	if buildNoRollup {
		cfg.Rollup = false
	}
	cfg.Clean = buildClean
}

// runBuild loads the manifest and builds it, printing the report to w.
func runBuild(ctx context.Context, cfg *config.Build, w io.Writer) error {
	doc, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)
	for _, issue := range manifest.Lint(doc) {
		logger.Warn(issue.Message, "path", issue.Path)
	}
	report, err := build.Run(ctx, cfg, doc)
	if err != nil {
		return err
	}
	report.Print(w)
	if report.Failed() {
		return fmt.Errorf("%d gadget(s) could not be built", len(report.Failures)+len(report.Pruned))
	}
	return nil
}
