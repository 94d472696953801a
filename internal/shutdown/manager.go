package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"photo-restorer/internal/logger"
)

const DefaultComponentTimeout = 10 * time.Second

// Component is anything that must be stopped before the process exits.
type Component interface {
	Shutdown(ctx context.Context) error
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(ctx context.Context) error

func (f ComponentFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

type registration struct {
	name      string
	component Component
}

// Manager stops registered components in reverse registration order, once.
type Manager struct {
	mu         sync.Mutex
	components []registration
	timeout    time.Duration
	logger     logger.Logger
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(log logger.Logger, componentTimeout time.Duration) *Manager {
	if componentTimeout <= 0 {
		componentTimeout = DefaultComponentTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		timeout: componentTimeout,
		logger:  log,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *Manager) Register(name string, component Component) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, registration{name: name, component: component})
}

// Listen starts shutdown on SIGINT or SIGTERM.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
		case <-m.done:
		}
		signal.Stop(sigChan)
	}()
}

// Shutdown cancels Context and stops every component. Later calls return
// immediately.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	select {
	case <-m.done:
		m.mu.Unlock()
		return
	default:
		close(m.done)
	}
	components := make([]registration, len(m.components))
	copy(components, m.components)
	m.mu.Unlock()

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(components),
	})

	m.cancel()

	for i := len(components) - 1; i >= 0; i-- {
		reg := components[i]

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		errCh := make(chan error, 1)
		go func() {
			errCh <- reg.component.Shutdown(ctx)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				m.logger.Error("ShutdownManager", err, map[string]interface{}{
					"component": reg.name,
				})
			}
		case <-ctx.Done():
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component": reg.name,
				"timeout":   m.timeout.String(),
			})
		}
		cancel()
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
}

// Context is cancelled when shutdown starts.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
