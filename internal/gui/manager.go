package gui

import (
	"image"
	"time"

	"photo-restorer/internal/gui/components"
	"photo-restorer/internal/logger"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

// Manager owns the preview window's widgets. Every method may be called from
// any goroutine.
type Manager struct {
	window     fyne.Window
	logger     logger.Logger
	isShutdown bool

	imageDisplay *components.ImageDisplay
	toolbar      *components.Toolbar
	statusBar    *components.StatusBar
}

func NewManager(window fyne.Window, log logger.Logger) *Manager {
	m := &Manager{
		window:       window,
		logger:       log,
		imageDisplay: components.NewImageDisplay(),
		toolbar:      components.NewToolbar(),
		statusBar:    components.NewStatusBar(),
	}

	log.Info("GUIManager", "initialized", map[string]interface{}{
		"image_width":  components.ImageAreaWidth,
		"image_height": components.ImageAreaHeight,
	})

	return m
}

func (m *Manager) GetMainContainer() *fyne.Container {
	return container.NewBorder(
		m.toolbar.GetContainer(),
		m.statusBar.GetContainer(),
		nil, nil,
		container.NewScroll(m.imageDisplay.GetContainer()),
	)
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

func (m *Manager) SetActionHandler(handler func(action string)) {
	m.toolbar.SetActionHandler(func(action string) {
		m.logger.Debug("GUIManager", "action requested", map[string]interface{}{
			"action": action,
		})
		handler(action)
	})
}

// SetOriginalImage shows a freshly loaded image and unlocks the image actions.
func (m *Manager) SetOriginalImage(img image.Image, width, height int, format string) {
	fyne.Do(func() {
		m.imageDisplay.SetOriginalImage(img)
		m.imageDisplay.ClearPreview()
		m.statusBar.SetImageInfo(width, height, format)
		m.toolbar.SetImageActionsEnabled(true)
	})
}

func (m *Manager) SetPreviewImage(title string, img image.Image, elapsed time.Duration) {
	fyne.Do(func() {
		m.imageDisplay.SetPreviewImage(title, img)
		m.statusBar.SetTiming(title, elapsed)
	})
}

func (m *Manager) UpdateStatus(status string) {
	fyne.Do(func() {
		m.statusBar.SetStatus(status)
	})
}

// SetBusy locks the toolbar while a primitive runs.
func (m *Manager) SetBusy(busy bool) {
	fyne.Do(func() {
		m.toolbar.SetImageActionsEnabled(!busy)
		if busy {
			m.toolbar.Button(components.ActionLoad).Disable()
		} else {
			m.toolbar.Button(components.ActionLoad).Enable()
		}
	})
}

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})

	fyne.Do(func() {
		dialog.ShowError(err, m.window)
	})
}

func (m *Manager) Shutdown() {
	if m.isShutdown {
		return
	}
	m.isShutdown = true
	m.logger.Info("GUIManager", "shutdown initiated", nil)
}
