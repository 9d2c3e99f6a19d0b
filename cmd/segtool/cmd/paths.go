package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"atlas-segment/internal/paths"
)

func newPathsCommand() *cobra.Command {
	var standard bool
	cmd := &cobra.Command{
		Use:   "paths ROOT",
		Short: "Print the segmentation layout of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := paths.Resolve(args[0], spaceMode(standard))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode:    %s\n", p.Mode)
			fmt.Fprintf(out, "main:    %s\n", p.Main)
			fmt.Fprintf(out, "regions: %s\n", p.RegionsDirectory)
			fmt.Fprintf(out, "tracks:  %s\n", p.TracksDirectory)
			fmt.Fprintf(out, "export:  %s\n", p.ExportDirectory)
			return nil
		},
	}
	cmd.Flags().BoolVar(&standard, "standard", false, "atlas (standard) space instead of sample space")
	return cmd
}

func spaceMode(standard bool) paths.SpaceMode {
	if standard {
		return paths.Standard
	}
	return paths.Sample
}
