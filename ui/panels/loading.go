package panels

import (
	"atlas-segment/internal/app"
	"atlas-segment/internal/atlas"
	"atlas-segment/internal/paths"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LoadingPanel opens registration directories and atlases, and toggles
// the segmentation cards.
type LoadingPanel struct {
	sp        *SidePanel
	container fyne.CanvasObject

	sampleButton   *widget.Button
	standardButton *widget.Button
	atlasSelect    *widget.Select
	tracksToggle   *widget.Button
	regionsToggle  *widget.Button
	statusLabel    *widget.Label
}

// NewLoadingPanel creates the loading card.
func NewLoadingPanel(sp *SidePanel) *LoadingPanel {
	lp := &LoadingPanel{sp: sp}
	ctrl := sp.ctrl

	lp.statusLabel = widget.NewLabel(ctrl.Session().Status())

	lp.sampleButton = widget.NewButton("Load project (sample space)", func() {
		ctrl.LoadDirectory(paths.Sample)
	})
	lp.standardButton = widget.NewButton("Load project (atlas space)", func() {
		ctrl.LoadDirectory(paths.Standard)
	})

	lp.atlasSelect = widget.NewSelect(nil, nil)
	lp.atlasSelect.PlaceHolder = atlas.MenuPlaceholder
	lp.RefreshAtlases()
	lp.atlasSelect.OnChanged = lp.onAtlasSelected

	lp.tracksToggle = widget.NewButton("Trace tracks", func() {
		ctrl.Tracks.TogglePanelVisibility()
	})
	lp.regionsToggle = widget.NewButton("Segment regions", func() {
		ctrl.Regions.TogglePanelVisibility()
	})

	lp.container = widget.NewCard("Load data", "", container.NewVBox(
		lp.sampleButton,
		lp.standardButton,
		lp.atlasSelect,
		container.NewGridWithColumns(2, lp.tracksToggle, lp.regionsToggle),
		lp.statusLabel,
	))

	ctrl.Session().On(app.EventStatusChanged, func(data interface{}) {
		if status, ok := data.(string); ok {
			lp.statusLabel.SetText(status)
		}
	})
	ctrl.Session().On(app.EventLoadFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			sp.showError(err)
		}
	})

	return lp
}

// Container returns the panel container.
func (lp *LoadingPanel) Container() fyne.CanvasObject {
	return lp.container
}

// RefreshAtlases lists installed atlases into the selector without
// triggering a selection.
func (lp *LoadingPanel) RefreshAtlases() {
	entries, err := lp.sp.ctrl.AtlasMenu()
	if err != nil {
		lp.sp.logger.Warn("failed to list atlases", "error", err)
	}
	onChanged := lp.atlasSelect.OnChanged
	lp.atlasSelect.OnChanged = nil
	lp.atlasSelect.Options = entries
	lp.atlasSelect.SetSelected(atlas.MenuPlaceholder)
	lp.atlasSelect.OnChanged = onChanged
}

func (lp *LoadingPanel) onAtlasSelected(entry string) {
	if _, ok := atlas.ParseMenuEntry(entry); !ok {
		return
	}
	if err := lp.sp.ctrl.SelectAtlasEntry(entry); err != nil {
		lp.sp.showError(err)
	}
}

func (lp *LoadingPanel) apply(v app.View) {
	if v.TogglesEnabled {
		lp.tracksToggle.Enable()
		lp.regionsToggle.Enable()
	} else {
		lp.tracksToggle.Disable()
		lp.regionsToggle.Disable()
	}
}
