package cli

import (
	"fmt"
	"path/filepath"

	"github.com/gadgetry/gadgetc/internal/scaffold"
	"github.com/spf13/cobra"
)

var newI18n bool

func init() {
	newCmd.Flags().BoolVar(&newI18n, "i18n", false, "Include an English message file")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new gadget",
	Long: `Create a gadget directory with a script and a stylesheet and add the gadget
to the manifest.

Examples:
  gadgetc new Clock
  gadgetc new Greeter --i18n`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProject()
		if err != nil {
			return err
		}

		result, err := scaffold.Generate(cfg, scaffold.NewData(args[0], cfg.Namespace, newI18n))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		rel, err := filepath.Rel(cfg.Dir, result.OutputDir)
		if err != nil {
			rel = result.OutputDir
		}
		fmt.Fprintf(out, "Created gadget %s in %s/\n", args[0], filepath.ToSlash(rel))
		for _, f := range result.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
		if len(result.Warnings) > 0 {
			fmt.Fprintln(out, "\nManifest validation warnings:")
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "  - %s\n", w)
			}
		}
		return nil
	},
}
