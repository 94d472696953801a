package components

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Toolbar actions.
const (
	ActionLoad     = "load"
	ActionSave     = "save"
	ActionDenoise  = "denoise"
	ActionContrast = "contrast"
	ActionColor    = "color"
	ActionSharpen  = "sharpen"
	ActionRepair   = "repair"
	ActionRestore  = "restore"
	ActionCompare  = "compare"
)

// Toolbar holds one button per action and forwards taps to a single handler.
type Toolbar struct {
	container *fyne.Container
	buttons   map[string]*widget.Button
	handler   func(action string)
}

func NewToolbar() *Toolbar {
	t := &Toolbar{buttons: make(map[string]*widget.Button)}
	t.setupToolbar()
	return t
}

func (t *Toolbar) setupToolbar() {
	background := canvas.NewRectangle(color.RGBA{R: 250, G: 249, B: 245, A: 255})
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeWidth = 1.0
	border.StrokeColor = color.RGBA{R: 231, G: 231, B: 231, A: 255}

	load := t.button(ActionLoad, "Load")
	load.Importance = widget.HighImportance
	save := t.button(ActionSave, "Save")
	save.Importance = widget.HighImportance
	leftSection := container.NewHBox(load, save)

	centerSection := container.NewHBox(
		t.button(ActionRepair, "Repair"),
		t.button(ActionDenoise, "Denoise"),
		t.button(ActionColor, "Color"),
		t.button(ActionContrast, "Contrast"),
		t.button(ActionSharpen, "Sharpen"),
		widget.NewSeparator(),
		t.button(ActionRestore, "Restore"),
		t.button(ActionCompare, "Compare"),
	)
	t.buttons[ActionRestore].Importance = widget.HighImportance

	content := container.NewBorder(nil, nil, leftSection, nil, centerSection)

	t.container = container.NewStack(
		border,
		container.NewPadded(
			container.NewStack(background, container.NewPadded(content)),
		),
	)

	t.SetImageActionsEnabled(false)
}

func (t *Toolbar) button(action, label string) *widget.Button {
	b := widget.NewButton(label, func() {
		if t.handler != nil {
			t.handler(action)
		}
	})
	t.buttons[action] = b
	return b
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

func (t *Toolbar) SetActionHandler(handler func(action string)) {
	t.handler = handler
}

// Button exposes the button bound to action.
func (t *Toolbar) Button(action string) *widget.Button {
	return t.buttons[action]
}

// SetImageActionsEnabled toggles every action except Load.
func (t *Toolbar) SetImageActionsEnabled(enabled bool) {
	for action, b := range t.buttons {
		if action == ActionLoad {
			continue
		}
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}
