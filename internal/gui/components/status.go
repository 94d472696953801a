package components

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageLabel  *widget.Label
	timingLabel *widget.Label
}

func NewStatusBar() *StatusBar {
	statusLabel := widget.NewLabel("Ready")
	imageLabel := widget.NewLabel("No image")
	timingLabel := widget.NewLabel("")

	details := container.NewHBox(
		imageLabel,
		widget.NewSeparator(),
		timingLabel,
	)

	return &StatusBar{
		container:   container.NewBorder(nil, nil, statusLabel, details),
		statusLabel: statusLabel,
		imageLabel:  imageLabel,
		timingLabel: timingLabel,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}

func (sb *StatusBar) SetImageInfo(width, height int, format string) {
	sb.imageLabel.SetText(fmt.Sprintf("%dx%d %s", width, height, format))
}

func (sb *StatusBar) SetTiming(op string, elapsed time.Duration) {
	sb.timingLabel.SetText(fmt.Sprintf("%s: %d ms", op, elapsed.Milliseconds()))
}

func (sb *StatusBar) Timing() string {
	return sb.timingLabel.Text
}
