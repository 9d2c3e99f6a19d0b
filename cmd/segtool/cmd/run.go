package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"atlas-segment/internal/app"
	"atlas-segment/internal/atlas"
	"atlas-segment/internal/task"
	"atlas-segment/internal/viewer"
)

func newSaveCommand(opts *options) *cobra.Command {
	var standard bool
	cmd := &cobra.Command{
		Use:   "save DIR",
		Short: "Re-save the segmentations of a registration directory",
		Long: `Open a registration directory, trace its saved tracks (writing track
summaries when enabled) and save regions, volumes and tracks again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, opts, args[0], standard, (*app.Controller).Save)
		},
	}
	cmd.Flags().BoolVar(&standard, "standard", false, "atlas (standard) space instead of sample space")
	return cmd
}

func newExportCommand(opts *options) *cobra.Command {
	var standard bool
	cmd := &cobra.Command{
		Use:   "export DIR",
		Short: "Export region meshes and track splines for 3D rendering",
		Long: `Open a registration directory, trace its saved tracks and write region
meshes and spline arrays for an external renderer. Only available in
standard space.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, opts, args[0], standard, (*app.Controller).ExportToExternalRenderer)
		},
	}
	cmd.Flags().BoolVar(&standard, "standard", false, "atlas (standard) space instead of sample space")
	return cmd
}

// runHeadless opens dir with a controller and no window, traces tracks,
// then starts and waits on the task returned by start.
func runHeadless(cmd *cobra.Command, opts *options, dir string, standard bool, start func(*app.Controller) (*task.Task, error)) error {
	catalog := atlas.NewCatalog(opts.cfg.AtlasDir)
	ctrl := app.NewController(app.Options{
		Viewer:  viewer.NewModel(viewer.RegistrationReader{Atlases: catalog}),
		Atlases: catalog,
		Config:  opts.cfg,
		Logger:  opts.logger,
	})

	if err := ctrl.OpenDirectory(dir, spaceMode(standard)); err != nil {
		return err
	}
	splines, err := ctrl.Tracks.TraceTracks()
	if err != nil {
		opts.logger.Warn("some tracks could not be traced", "error", err)
	}

	t, err := start(ctrl)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if t == nil {
		fmt.Fprintln(out, "Nothing to save.")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := t.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s interrupted", t.Name())
		}
		return fmt.Errorf("%s: %w", t.Name(), err)
	}

	p := ctrl.Session().Paths()
	fmt.Fprintf(out, "%s finished: %d regions, %d tracks, %d splines\n",
		t.Name(), ctrl.Registry().RegionCount(), ctrl.Registry().TrackCount(), len(splines))
	fmt.Fprintf(out, "  output: %s\n", p.Main)
	return nil
}
