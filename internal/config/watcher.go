package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	logger   *slog.Logger
	onChange func(*Config)

	done    chan struct{}
	running bool
}

// NewWatcher creates a watcher for the config file at path.
// onChange receives every successfully loaded and validated config.
func NewWatcher(path string, onChange func(*Config), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = ConfigPath()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  w,
		path:     path,
		logger:   logger,
		onChange: onChange,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	// Watch the directory containing the file (survives editors replacing it)
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.running = true

	go w.watch(ctx)

	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-ctx.Done():
			return

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		// Keep running with the previous config until the file is fixed.
		w.logger.Warn("failed to reload config", "path", w.path, "error", err)
		return
	}

	w.logger.Info("config reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	return w.watcher.Close()
}
