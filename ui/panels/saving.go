package panels

import (
	"context"

	"atlas-segment/internal/app"
	"atlas-segment/internal/task"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// SavingPanel saves segmentations and exports them for 3D rendering.
type SavingPanel struct {
	sp        *SidePanel
	container *widget.Card

	saveButton   *widget.Button
	exportButton *widget.Button
	resultLabel  *widget.Label
}

// NewSavingPanel creates the saving card, hidden until data is loaded.
func NewSavingPanel(sp *SidePanel) *SavingPanel {
	svp := &SavingPanel{sp: sp}
	ctrl := sp.ctrl

	svp.resultLabel = widget.NewLabel("")
	svp.saveButton = widget.NewButton("Save", func() {
		svp.run(svp.saveButton, "Saved", ctrl.Save)
	})
	svp.exportButton = widget.NewButton("Export for 3D rendering", func() {
		svp.run(svp.exportButton, "Exported", ctrl.ExportToExternalRenderer)
	})

	svp.container = widget.NewCard("Save", "", container.NewVBox(
		svp.exportButton,
		svp.saveButton,
		svp.resultLabel,
	))
	svp.container.Hide()
	return svp
}

// Container returns the panel container.
func (svp *SavingPanel) Container() fyne.CanvasObject {
	return svp.container
}

// run starts a background task and re-enables btn when it finishes.
func (svp *SavingPanel) run(btn *widget.Button, doneText string, start func() (*task.Task, error)) {
	t, err := start()
	if err != nil {
		svp.sp.showError(err)
		return
	}
	if t == nil {
		svp.resultLabel.SetText("Nothing to save")
		return
	}
	btn.Disable()
	svp.resultLabel.SetText(t.Name() + "...")
	go func() {
		err := t.Wait(context.Background())
		btn.Enable()
		if err != nil {
			svp.resultLabel.SetText("")
			svp.sp.showError(err)
			return
		}
		svp.resultLabel.SetText(doneText)
	}()
}

func (svp *SavingPanel) apply(v app.View) {
	if v.SavePanelVisible {
		svp.container.Show()
	} else {
		svp.container.Hide()
	}
	if v.ExportVisible {
		svp.exportButton.Show()
	} else {
		svp.exportButton.Hide()
	}
}
