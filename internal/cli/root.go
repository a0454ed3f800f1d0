package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gadgetry/gadgetc/internal/branding"
	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Persistent flags shared by every command.
var (
	projectDir   string
	manifestPath string
	verbose      bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&projectDir, "dir", "C", ".", "Project directory containing "+branding.ConfigFile())
	flags.StringVar(&manifestPath, "manifest", "", "Manifest file (default: "+branding.ManifestFile()+" in the project directory)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` compiles the gadgets declared in a manifest into host modules and
generates the loader that registers them with the page at runtime.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := logging.New(cmd.ErrOrStderr(), verbose)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadProject resolves the build settings for the selected project,
// applying the --manifest override.
func loadProject() (*config.Build, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	if manifestPath != "" {
		abs, err := filepath.Abs(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("resolving manifest path %s: %w", manifestPath, err)
		}
		cfg.Manifest = abs
	}
	return cfg, nil
}
