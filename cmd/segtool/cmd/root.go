// Package cmd implements the segtool commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"atlas-segment/internal/config"
	"atlas-segment/internal/version"
)

// options are shared by every subcommand.
type options struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "segtool",
		Short: "Headless companion to Atlas Segment",
		Long: `Inspect installed atlases and project layouts, and save or export
segmentations of a registration directory without the GUI.

Examples:
  segtool atlases                           # List installed atlases
  segtool paths ~/brains/brain1 --standard  # Show where segmentations live
  segtool export ~/brains/brain1 --standard # Write meshes and splines`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newAtlasesCommand(opts),
		newPathsCommand(),
		newSaveCommand(opts),
		newExportCommand(opts),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	o.cfg = cfg
	o.logger = config.NewLogger(cmd.ErrOrStderr(), level)
	return nil
}
