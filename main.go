// Package main provides the entry point for the Atlas Segment application.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"atlas-segment/internal/app"
	"atlas-segment/internal/atlas"
	"atlas-segment/internal/brush"
	"atlas-segment/internal/config"
	"atlas-segment/internal/paths"
	"atlas-segment/internal/version"
	"atlas-segment/internal/viewer"
	"atlas-segment/ui/mainwindow"
	"atlas-segment/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/pflag"
)

const (
	appID    = "io.github.atlas-segment"
	appTitle = "Atlas Segment"
)

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath(), "configuration file")
	standard := pflag.Bool("standard", false, "open the directory argument in atlas (standard) space")
	watch := pflag.Bool("watch-config", true, "reload the configuration file when it changes")
	showVersion := pflag.BoolP("version", "v", false, "print version and exit")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [registration-directory]\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Debug("region brush", "backend", brush.Backend)

	catalog := atlas.NewCatalog(cfg.AtlasDir)
	model := viewer.NewModel(viewer.RegistrationReader{Atlases: catalog})

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.AtlasTheme{})

	win := mainwindow.New(fyneApp, model, app.Options{
		Atlases: catalog,
		Config:  cfg,
		Logger:  logger,
	}, prefs.Load())

	// Handle command line arguments
	if pflag.NArg() > 0 {
		mode := paths.Sample
		if *standard {
			mode = paths.Standard
		}
		dir := pflag.Arg(0)
		if err := win.Controller().OpenDirectory(dir, mode); err != nil {
			logger.Error("failed to open directory", "dir", dir, "error", err)
		}
	}

	if *watch {
		reloader := app.NewConfigReloader(*configPath, 2*time.Second, logger)
		reloader.OnReload(win.Controller().SetConfig)
		reloader.Start()
		defer reloader.Stop()
	}

	win.ShowAndRun()
}
