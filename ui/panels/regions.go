package panels

import (
	"fmt"

	"atlas-segment/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RegionsPanel adds, selects and removes region layers. Clicking or
// dragging on the canvas paints the selected region.
type RegionsPanel struct {
	sp        *SidePanel
	container *widget.Card

	regionSelect *widget.Select
	addButton    *widget.Button
	removeButton *widget.Button
	brushLabel   *widget.Label
}

// NewRegionsPanel creates the region card, hidden until toggled.
func NewRegionsPanel(sp *SidePanel) *RegionsPanel {
	rp := &RegionsPanel{sp: sp}
	ctrl := sp.ctrl

	rp.brushLabel = widget.NewLabel("")
	rp.regionSelect = widget.NewSelect(nil, func(name string) {
		if name == "" {
			return
		}
		if err := ctrl.Regions.SetActive(name); err != nil {
			sp.showError(err)
		}
	})
	rp.regionSelect.PlaceHolder = "No region"

	rp.addButton = widget.NewButton("Add region", func() {
		if _, err := ctrl.Regions.AddRegion(); err != nil {
			sp.showError(err)
		}
	})
	rp.removeButton = widget.NewButton("Remove region", func() {
		if rp.regionSelect.Selected == "" {
			return
		}
		if err := ctrl.Regions.Remove(rp.regionSelect.Selected); err != nil {
			sp.showError(err)
		}
	})

	rp.container = widget.NewCard("Region segmentation", "", container.NewVBox(
		container.NewGridWithColumns(2, rp.addButton, rp.removeButton),
		rp.regionSelect,
		rp.brushLabel,
	))
	rp.container.Hide()

	ctrl.Session().On(app.EventRegionsChanged, func(interface{}) {
		rp.sync()
		if sp.canvas != nil {
			sp.canvas.Refresh()
		}
	})
	rp.sync()
	return rp
}

// Container returns the panel container.
func (rp *RegionsPanel) Container() fyne.CanvasObject {
	return rp.container
}

// sync lists registered regions and selects the active one.
func (rp *RegionsPanel) sync() {
	ctrl := rp.sp.ctrl
	var names []string
	for _, l := range ctrl.Registry().Regions() {
		names = append(names, l.Name)
	}
	onChanged := rp.regionSelect.OnChanged
	rp.regionSelect.OnChanged = nil
	rp.regionSelect.Options = names
	if active := ctrl.Regions.Active(); active != nil {
		rp.regionSelect.SetSelected(active.Name)
	} else {
		rp.regionSelect.ClearSelected()
	}
	rp.regionSelect.OnChanged = onChanged

	if len(names) == 0 {
		rp.removeButton.Disable()
	} else {
		rp.removeButton.Enable()
	}
	rp.brushLabel.SetText(fmt.Sprintf("Brush radius: %d voxels", ctrl.Regions.BrushRadius()))
}

func (rp *RegionsPanel) apply(v app.View) {
	if v.RegionPanelVisible {
		rp.sync()
		rp.container.Show()
	} else {
		rp.container.Hide()
	}
}
