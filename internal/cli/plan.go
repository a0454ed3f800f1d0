package cli

import (
	"github.com/gadgetry/gadgetc/internal/entrypoint"
	"github.com/gadgetry/gadgetc/internal/manifest"
	"github.com/gadgetry/gadgetc/internal/plan"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which gadgets a build would include",
	Long: `Resolve the manifest's workspace policy and print the gadgets that would be
built, what each requires, and why the others were left out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProject()
		if err != nil {
			return err
		}
		doc, err := manifest.Load(cfg.Manifest)
		if err != nil {
			return err
		}
		p, err := plan.Resolve(doc)
		if err != nil {
			return err
		}
		// Report cycles here rather than at build time.
		if _, err := entrypoint.Order(p); err != nil {
			return err
		}
		plan.Print(cmd.OutOrStdout(), p)
		return nil
	},
}
