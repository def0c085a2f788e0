// Package watch provides a source-folder watcher built on fsnotify.
// It publishes FolderChangedEvents when audio files under a tracked root are
// created, removed or renamed, so the application can prompt a rescan.
package watch

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// Watcher observes tracked source folder roots for filesystem changes.
// Watches are registered per directory because fsnotify is not recursive;
// newly created directories are added as they appear.
//
// Thread-safety: Add/Close may be called from any goroutine.
type Watcher struct {
	logger *slog.Logger
	bus    ports.EventBus

	fsw   *fsnotify.Watcher
	roots []string
	mu    sync.Mutex
	wg    sync.WaitGroup

	audioExts map[string]struct{}
}

// NewWatcher creates a watcher and starts its event loop.
func NewWatcher(logger *slog.Logger, bus ports.EventBus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		logger: logger,
		bus:    bus,
		fsw:    fsw,
		audioExts: map[string]struct{}{
			".mp3": {}, ".m4a": {}, ".flac": {}, ".wav": {}, ".aac": {}, ".ogg": {},
		},
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Add starts watching a source folder root and all directories beneath it.
func (w *Watcher) Add(root string) error {
	w.mu.Lock()
	w.roots = append(w.roots, root)
	w.mu.Unlock()

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree, keep watching the rest
			return nil
		}
		if entry.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil && w.logger != nil {
				w.logger.Warn("cannot watch directory",
					slog.String("path", path),
					slog.Any("error", addErr))
			}
		}
		return nil
	})
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// run drains fsnotify events, forwarding relevant ones to the event bus.
func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher error", slog.Any("error", err))
			}
		}
	}
}

// handleEvent filters one fsnotify event and publishes a FolderChangedEvent
// when it concerns an audio file under a tracked root.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch
	if event.Op&fsnotify.Create != 0 {
		if w.looksLikeDir(event.Name) {
			_ = w.fsw.Add(event.Name)
			return
		}
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	if _, ok := w.audioExts[ext]; !ok {
		return
	}

	root := w.rootOf(event.Name)
	if root == "" {
		return
	}

	w.bus.Publish(domain.NewFolderChangedEvent(root, event.Name))
}

// looksLikeDir reports whether the path currently resolves to a directory.
func (w *Watcher) looksLikeDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// rootOf returns the tracked root containing path, or "".
func (w *Watcher) rootOf(path string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, root := range w.roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) || path == root {
			return root
		}
	}
	return ""
}
