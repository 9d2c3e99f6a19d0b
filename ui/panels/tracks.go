package panels

import (
	"fmt"

	"atlas-segment/internal/app"
	"atlas-segment/pkg/colorutil"
	"atlas-segment/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// TracksPanel adds, selects and traces track layers. Clicking on the
// canvas appends a point to the selected track.
type TracksPanel struct {
	sp        *SidePanel
	container *widget.Card

	trackSelect  *widget.Select
	addButton    *widget.Button
	removeButton *widget.Button
	traceButton  *widget.Button
	pointsLabel  *widget.Label
}

// NewTracksPanel creates the track card, hidden until toggled.
func NewTracksPanel(sp *SidePanel) *TracksPanel {
	tp := &TracksPanel{sp: sp}
	ctrl := sp.ctrl

	tp.pointsLabel = widget.NewLabel("")
	tp.trackSelect = widget.NewSelect(nil, func(name string) {
		if name == "" {
			return
		}
		if err := ctrl.Tracks.SetActive(name); err != nil {
			sp.showError(err)
		}
		tp.updatePoints()
	})
	tp.trackSelect.PlaceHolder = "No track"

	tp.addButton = widget.NewButton("Add track", func() {
		if _, err := ctrl.Tracks.AddTrack(); err != nil {
			sp.showError(err)
		}
	})
	tp.removeButton = widget.NewButton("Remove track", func() {
		if tp.trackSelect.Selected == "" {
			return
		}
		if err := ctrl.Tracks.Remove(tp.trackSelect.Selected); err != nil {
			sp.showError(err)
		}
	})
	tp.traceButton = widget.NewButton("Trace tracks", tp.onTrace)

	tp.container = widget.NewCard("Track tracing", "", container.NewVBox(
		container.NewGridWithColumns(2, tp.addButton, tp.removeButton),
		tp.trackSelect,
		tp.pointsLabel,
		tp.traceButton,
	))
	tp.container.Hide()

	ctrl.Session().On(app.EventTracksChanged, func(interface{}) {
		tp.sync()
		if sp.canvas != nil {
			sp.canvas.Refresh()
		}
	})
	tp.sync()
	return tp
}

// Container returns the panel container.
func (tp *TracksPanel) Container() fyne.CanvasObject {
	return tp.container
}

func (tp *TracksPanel) onTrace() {
	splines, err := tp.sp.ctrl.Tracks.TraceTracks()
	if err != nil {
		tp.sp.showError(err)
	}
	if tp.sp.canvas == nil {
		return
	}
	paths := make([]canvas.OverlayPath, 0, len(splines))
	for _, s := range splines {
		paths = append(paths, canvas.OverlayPath{Points: s.Points, Color: colorutil.Cyan})
	}
	tp.sp.canvas.SetPaths(paths)
}

// sync lists registered tracks and selects the active one.
func (tp *TracksPanel) sync() {
	ctrl := tp.sp.ctrl
	var names []string
	for _, l := range ctrl.Registry().Tracks() {
		names = append(names, l.Name)
	}
	onChanged := tp.trackSelect.OnChanged
	tp.trackSelect.OnChanged = nil
	tp.trackSelect.Options = names
	if active := ctrl.Tracks.Active(); active != nil {
		tp.trackSelect.SetSelected(active.Name)
	} else {
		tp.trackSelect.ClearSelected()
	}
	tp.trackSelect.OnChanged = onChanged

	if len(names) == 0 {
		tp.removeButton.Disable()
		tp.traceButton.Disable()
	} else {
		tp.removeButton.Enable()
		tp.traceButton.Enable()
	}
	tp.updatePoints()
}

func (tp *TracksPanel) updatePoints() {
	active := tp.sp.ctrl.Tracks.Active()
	if active == nil {
		tp.pointsLabel.SetText("Select a track to add points")
		return
	}
	tp.pointsLabel.SetText(fmt.Sprintf("%s: %d points", active.Name, len(active.Points)))
}

func (tp *TracksPanel) apply(v app.View) {
	if v.TrackPanelVisible {
		tp.sync()
		tp.container.Show()
	} else {
		tp.container.Hide()
	}
}
