package config

import (
	"fmt"
	"os"
	"sync"
)

// Manager provides thread-safe access to the application configuration.
type Manager struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewManager creates a new configuration manager.
func NewManager(cfg *Config) *Manager {
	return &Manager{cfg: cfg}
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.cfg
}

// Update replaces the current configuration.
func (m *Manager) Update(cfg *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// EnsureDirectories creates the library and drop directories if they don't
// exist yet.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dirs := []string{m.cfg.LibraryPath}
	if m.cfg.Import.DropPath != "" {
		dirs = append(dirs, m.cfg.Import.DropPath)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
