// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"atlas-segment/internal/app"
	"atlas-segment/internal/paths"
	"atlas-segment/internal/version"
	"atlas-segment/internal/viewer"
	"atlas-segment/ui/canvas"
	"atlas-segment/ui/panels"
	"atlas-segment/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const appTitle = "Atlas Segment"

// MainWindow is the primary application window. It is also the
// controller's directory chooser.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	prefs  *prefs.Prefs
	logger *slog.Logger

	ctrl       *app.Controller
	model      *viewer.Model
	canvas     *canvas.SliceCanvas
	sidePanel  *panels.SidePanel
	split      *container.Split
	statusBar  *widget.Label
	hoverLabel *widget.Label
}

var _ app.DirectoryChooser = (*MainWindow)(nil)

// New creates the main window and the controller it drives. opts.Viewer
// and opts.Chooser are set by the window.
func New(fyneApp fyne.App, model *viewer.Model, opts app.Options, p *prefs.Prefs) *MainWindow {
	if p == nil {
		p = prefs.Load()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		prefs:  p,
		logger: logger.With("component", "mainwindow"),
		model:  model,
	}

	opts.Viewer = model
	opts.Chooser = mw
	mw.ctrl = app.NewController(opts)

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.Float(prefs.KeyWindowWidth, 1200)),
		float32(p.Float(prefs.KeyWindowHeight, 800)),
	))
	mw.SetCloseIntercept(func() {
		mw.SavePreferences()
		mw.Close()
	})
	return mw
}

// Controller returns the session controller behind the window.
func (mw *MainWindow) Controller() *app.Controller {
	return mw.ctrl
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewSliceCanvas(mw.model)

	mw.sidePanel = panels.NewSidePanel(mw.ctrl, mw.canvas, mw.logger)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel(app.StatusReady)
	mw.hoverLabel = widget.NewLabel("")

	canvasArea := container.NewBorder(
		mw.createToolbar(),    // top
		nil,                   // bottom
		nil,                   // left
		nil,                   // right
		mw.canvas.Container(), // center
	)

	mw.split = container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	mw.split.SetOffset(mw.prefs.Float(prefs.KeySplitOffset, 0.25))

	content := container.NewBorder(
		nil, // top
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.hoverLabel, mw.statusBar)), // bottom
		nil,      // left
		nil,      // right
		mw.split, // center
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.canvas.ZoomOut),
		widget.NewButton("+", mw.canvas.ZoomIn),
		widget.NewButton("1:1", func() { mw.canvas.SetZoom(1) }),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Load Project (Sample Space)...", func() { mw.ctrl.LoadDirectory(paths.Sample) }),
		fyne.NewMenuItem("Load Project (Atlas Space)...", func() { mw.ctrl.LoadDirectory(paths.Standard) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Refresh Atlas List", mw.sidePanel.RefreshAtlases),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Atlas Annotation", mw.onToggleAnnotation),
		fyne.NewMenuItem("Toggle Region Panel", mw.ctrl.Regions.TogglePanelVisibility),
		fyne.NewMenuItem("Toggle Track Panel", mw.ctrl.Tracks.TogglePanelVisibility),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	s := mw.ctrl.Session()

	s.On(app.EventStatusChanged, func(data interface{}) {
		if status, ok := data.(string); ok {
			mw.updateStatus(status)
		}
	})

	s.On(app.EventDirectoryChanged, func(data interface{}) {
		p, ok := data.(paths.Paths)
		if !ok || p.Root == "" {
			mw.SetTitle(appTitle)
			return
		}
		mw.SetTitle(fmt.Sprintf("%s - %s (%s)", appTitle, filepath.Base(p.Root), p.Mode))
	})

	s.On(app.EventHoverChanged, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.hoverLabel.SetText(name)
		}
	})

	s.On(app.EventAtlasSelected, func(interface{}) {
		a := mw.ctrl.Atlas()
		if a == nil {
			return
		}
		mw.canvas.SetResolution(a.Resolution()[1])
		mw.prefs.SetString(prefs.KeyLastAtlas, a.Name())
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// ChooseDirectory shows a folder dialog starting in the last used
// directory. done receives "" when the dialog is cancelled.
func (mw *MainWindow) ChooseDirectory(title string, done func(dir string)) {
	mw.updateStatus(title)
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			done("")
			return
		}
		if uri == nil {
			done("")
			return
		}
		mw.saveLastDir(uri.Path())
		done(uri.Path())
	}, mw.Window)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir remembers the parent of a chosen directory, so the next
// dialog opens next to it.
func (mw *MainWindow) saveLastDir(dir string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(dir))
}

// SavePreferences stores window geometry and writes preferences to disk.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	mw.prefs.SetFloat(prefs.KeySplitOffset, mw.split.Offset)
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("failed to save preferences", "path", mw.prefs.Path(), "error", err)
	}
}

func (mw *MainWindow) onToggleAnnotation() {
	a := mw.ctrl.Atlas()
	if a == nil {
		return
	}
	if l, ok := mw.model.Layer(a.Name()); ok {
		l.Visible = !l.Visible
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Segment regions and trace tracks over brain atlases\n"+
			"and registered sample images.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
