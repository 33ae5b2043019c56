package library

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceSecs = 5

// Watcher monitors the drop directory and imports whatever lands in it.
// Events are debounced so a file still being copied isn't picked up half
// written; after the quiet period the whole directory is scanned.
type Watcher struct {
	service       *Service
	watcher       *fsnotify.Watcher
	dropPath      string
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	running       bool
	stopChan      chan struct{}
}

// NewWatcher creates a new drop-directory watcher.
func NewWatcher(service *Service) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		service:  service,
		watcher:  fsw,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching the drop path.
func (w *Watcher) Start(ctx context.Context, dropPath string) error {
	w.dropPath = dropPath
	slog.Info("Starting drop watcher", "path", dropPath)

	if err := w.watcher.Add(dropPath); err != nil {
		return err
	}
	w.running = true
	go w.watchLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}
	slog.Info("Stopping drop watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	return w.running
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && w.isSupportedFile(event.Name) {
				w.scheduleScan(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Drop watcher error", "error", err)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) isSupportedFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return audioExtensions[ext] || imageExtensions[ext]
}

// scheduleScan resets the debounce timer; the scan runs once the directory
// has been quiet for the debounce period.
func (w *Watcher) scheduleScan(ctx context.Context) {
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceSecs*time.Second, func() {
		w.scanDropDir(ctx)
	})
}

// scanDropDir imports every supported file in the drop directory, deleting
// each one after a successful import.
func (w *Watcher) scanDropDir(ctx context.Context) {
	entries, err := os.ReadDir(w.dropPath)
	if err != nil {
		slog.Error("Failed to scan drop directory", "path", w.dropPath, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !w.isSupportedFile(entry.Name()) {
			continue
		}
		full := filepath.Join(w.dropPath, entry.Name())
		if err := w.importFile(ctx, full); err != nil {
			slog.Error("Failed to import dropped file", "path", full, "error", err)
			continue
		}
		if err := os.Remove(full); err != nil {
			slog.Warn("Failed to remove imported drop file", "path", full, "error", err)
		}
	}
}

func (w *Watcher) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if audioExtensions[ext] {
		_, err = w.service.ImportSong(ctx, filepath.Base(path), f)
	} else {
		_, err = w.service.ImportPhoto(ctx, filepath.Base(path), f)
	}
	return err
}
