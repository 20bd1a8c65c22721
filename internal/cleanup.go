package internal

import (
	"sync"

	"go.uber.org/zap"
)

// CleanupManager tracks process-lifetime resources and ensures ordered
// cleanup in LIFO order.
type CleanupManager struct {
	mu     sync.Mutex
	logger *zap.Logger
	funcs  []cleanupFunc
}

type cleanupFunc struct {
	name string
	fn   func() error
}

// NewCleanupManager creates a new cleanup manager. Cleanup failures are
// logged through the provided logger and never abort remaining cleanups.
func NewCleanupManager(logger *zap.Logger) *CleanupManager {
	return &CleanupManager{logger: logger}
}

// Add registers a cleanup function. Functions are executed in LIFO order
// (last added, first executed) to ensure proper cleanup sequencing.
func (m *CleanupManager) Add(name string, fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append([]cleanupFunc{{name, fn}}, m.funcs...)
}

// Execute runs all cleanup functions in reverse order (LIFO), logging any
// errors. All cleanups run even if some fail.
func (m *CleanupManager) Execute() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cleanup := range m.funcs {
		if err := cleanup.fn(); err != nil {
			m.logger.Error("cleanup failed",
				zap.String("resource", cleanup.name),
				zap.Error(err),
			)
		}
	}
}
