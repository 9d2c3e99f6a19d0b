package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"atlas-segment/internal/atlas"
)

func newAtlasesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "atlases",
		Short: "List installed atlases",
		Long: `List the atlases found in the configured atlas directory, in the
order the GUI offers them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := atlas.NewCatalog(opts.cfg.AtlasDir)
			list, err := catalog.ListAvailableAtlases()
			if err != nil {
				return fmt.Errorf("list atlases: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintf(out, "No atlases installed in %s.\n", catalog.Root())
				return nil
			}
			for _, d := range list {
				fmt.Fprintf(out, "  - %s\n", d)
			}
			return nil
		},
	}
}
