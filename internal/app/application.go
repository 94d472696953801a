package app

import (
	"context"

	"photo-restorer/internal/gui"
	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/pipeline"
	"photo-restorer/internal/services"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName         = "Photo Restorer Preview"
	AppID           = "com.photorestorer.preview"
	AppVersion      = "1.0.0"
	StatusBarHeight = 40
	ToolbarHeight   = 60
)

// Application is the desktop previewer: one window, one session.
type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	guiManager *gui.Manager
	lifecycle  *Lifecycle
	logger     logger.Logger
}

func NewApplication(orchestrator *pipeline.Orchestrator, restoreCfg models.RestoreConfig, log logger.Logger) *Application {
	fyneApp := app.NewWithID(AppID)
	fyneApp.SetMetadata(&fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	window := fyneApp.NewWindow(AppName)

	size := calculateWindowSize()
	window.Resize(size)
	window.CenterOnScreen()
	window.SetMaster()

	guiManager := gui.NewManager(window, log)
	session := services.NewSession(orchestrator, log)
	handlers := NewHandlers(session, orchestrator.Saver(), guiManager, restoreCfg, log)
	guiManager.SetActionHandler(handlers.HandleAction)

	log.Info("Application", "starting application", map[string]interface{}{
		"version":          AppVersion,
		"window_width":     size.Width,
		"window_height":    size.Height,
		"color_correction": orchestrator.Corrector().Available(),
	})

	return &Application{
		fyneApp:    fyneApp,
		window:     window,
		guiManager: guiManager,
		lifecycle:  NewLifecycle(session, handlers, guiManager, log),
		logger:     log,
	}
}

func calculateWindowSize() fyne.Size {
	// two 640x480 panes plus labels and padding
	return fyne.NewSize(640*2+40, 480+ToolbarHeight+StatusBarHeight+60)
}

// Lifecycle exposes the component the shutdown manager should stop.
func (a *Application) Lifecycle() *Lifecycle {
	return a.lifecycle
}

// Quit closes the window from any goroutine.
func (a *Application) Quit() {
	fyne.Do(func() {
		a.fyneApp.Quit()
	})
}

// Run blocks until the window closes.
func (a *Application) Run() error {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		_ = a.lifecycle.Shutdown(context.Background())
		a.window.Close()
	})

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.window.ShowAndRun()

	return nil
}
