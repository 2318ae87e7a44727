package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu      sync.RWMutex
	config  *Config
	path    string
	watcher *fsnotify.Watcher
}

// NewManager creates a new Manager.
func NewManager(config *Config, path string) *Manager {
	return &Manager{config: config, path: path}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update updates the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"library_path_changed", oldConfig.LibraryPath != config.LibraryPath,
			"recognition_endpoint_changed", oldConfig.Recognition.Endpoint != config.Recognition.Endpoint,
			"telegram_enabled_changed", oldConfig.Telegram.Enabled != config.Telegram.Enabled,
			"logger_level_changed", oldConfig.Logger.Level != config.Logger.Level,
		)
	}
}

// EnsureDirectories creates the library areas if they don't exist:
// the songs area for audio blobs, the lyrics area for lyric text, and the
// staging area for transcription intermediates.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	dirs := []string{
		filepath.Join(cfg.LibraryPath, "songs"),
		filepath.Join(cfg.LibraryPath, "lyrics"),
		cfg.StagingPath,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Watch starts watching the config file and hot-reloads it on change.
// Invalid edits are logged and ignored, keeping the last good config.
func (m *Manager) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	m.watcher = watcher

	// Watch the directory, not the file: editors replace files on save.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(m.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := readConfig(m.path)
				if err != nil {
					slog.Warn("Config reload failed, keeping previous configuration", "error", err)
					continue
				}
				m.Update(cfg)
				slog.Info("Configuration reloaded", "path", m.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Config watcher error", "error", err)
			}
		}
	}()
	return nil
}

// Close stops the config watcher if one is running.
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}
