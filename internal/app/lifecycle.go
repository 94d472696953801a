package app

import (
	"context"
	"sync"

	"photo-restorer/internal/gui"
	"photo-restorer/internal/logger"
	"photo-restorer/internal/services"
)

// Lifecycle releases the preview application's resources once.
type Lifecycle struct {
	session    *services.Session
	handlers   *Handlers
	guiManager *gui.Manager
	logger     logger.Logger
	once       sync.Once
}

func NewLifecycle(session *services.Session, handlers *Handlers, gm *gui.Manager, log logger.Logger) *Lifecycle {
	return &Lifecycle{
		session:    session,
		handlers:   handlers,
		guiManager: gm,
		logger:     log,
	}
}

// Shutdown satisfies shutdown.Component.
func (l *Lifecycle) Shutdown(context.Context) error {
	l.once.Do(func() {
		l.logger.Info("Lifecycle", "shutdown sequence initiated", nil)

		if l.guiManager != nil {
			l.guiManager.Shutdown()
		}
		if l.handlers != nil {
			l.handlers.Release()
		}
		if l.session != nil {
			l.session.Close()
		}

		l.logger.Info("Lifecycle", "shutdown sequence completed", nil)
	})
	return nil
}
