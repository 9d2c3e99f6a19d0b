// Package panels provides the side column of the main window: loading,
// region, track and saving cards.
package panels

import (
	"log/slog"

	"atlas-segment/internal/app"
	"atlas-segment/pkg/geometry"
	"atlas-segment/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

// SidePanel stacks the session cards in one scrollable column.
type SidePanel struct {
	ctrl      *app.Controller
	canvas    *canvas.SliceCanvas
	window    fyne.Window
	logger    *slog.Logger
	container fyne.CanvasObject

	loadingPanel *LoadingPanel
	tracksPanel  *TracksPanel
	regionsPanel *RegionsPanel
	savingPanel  *SavingPanel
}

// NewSidePanel builds the cards and routes canvas clicks to the active
// track or region.
func NewSidePanel(ctrl *app.Controller, cvs *canvas.SliceCanvas, logger *slog.Logger) *SidePanel {
	if logger == nil {
		logger = slog.Default()
	}
	sp := &SidePanel{
		ctrl:   ctrl,
		canvas: cvs,
		logger: logger.With("component", "panels"),
	}

	sp.loadingPanel = NewLoadingPanel(sp)
	sp.tracksPanel = NewTracksPanel(sp)
	sp.regionsPanel = NewRegionsPanel(sp)
	sp.savingPanel = NewSavingPanel(sp)

	sp.container = container.NewVScroll(container.NewVBox(
		sp.loadingPanel.Container(),
		sp.tracksPanel.Container(),
		sp.regionsPanel.Container(),
		sp.savingPanel.Container(),
	))

	if cvs != nil {
		cvs.OnLeftClick(func(pos geometry.Point3D) { sp.onClick(pos, false) })
		cvs.OnDrag(func(pos geometry.Point3D) { sp.onClick(pos, true) })
	}

	ctrl.Session().On(app.EventInterfaceChanged, func(interface{}) {
		sp.applyView()
	})
	sp.applyView()
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.window = w
}

// RefreshAtlases reloads the atlas menu.
func (sp *SidePanel) RefreshAtlases() {
	sp.loadingPanel.RefreshAtlases()
}

// showError reports err in a dialog, or only logs it without a window.
func (sp *SidePanel) showError(err error) {
	if err == nil {
		return
	}
	sp.logger.Error("operation failed", "error", err)
	if sp.window != nil {
		dialog.ShowError(err, sp.window)
	}
}

// applyView shows and enables widgets from the session's presentation flags.
func (sp *SidePanel) applyView() {
	v := sp.ctrl.Session().View()
	sp.loadingPanel.apply(v)
	sp.tracksPanel.apply(v)
	sp.regionsPanel.apply(v)
	sp.savingPanel.apply(v)
}

// onClick adds a point to the active track when the track card is open;
// otherwise it paints the active region. Drags only paint.
func (sp *SidePanel) onClick(pos geometry.Point3D, drag bool) {
	v := sp.ctrl.Session().View()
	if !drag && v.TrackPanelVisible && sp.ctrl.Tracks.Active() != nil {
		if err := sp.ctrl.Tracks.AddPoint(pos.Z, pos.Y, pos.X); err != nil {
			sp.showError(err)
		}
		return
	}
	if !v.RegionPanelVisible || sp.ctrl.Regions.Active() == nil {
		return
	}
	z, y, x := pos.Voxel()
	if _, err := sp.ctrl.Regions.Paint(z, y, x); err != nil {
		sp.showError(err)
		return
	}
	if sp.canvas != nil {
		sp.canvas.Refresh()
	}
}
