package cli

import (
	"fmt"

	"github.com/gadgetry/gadgetc/internal/manifest"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [manifest]",
	Short: "Check a manifest against the schema and semantic rules",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			path = cfg.Manifest
		}

		doc, err := manifest.Load(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s is valid (%d gadgets)\n", path, len(doc.Gadgets))
		for _, issue := range manifest.Lint(doc) {
			fmt.Fprintf(out, "  warning: %s\n", issue)
		}
		return nil
	},
}
