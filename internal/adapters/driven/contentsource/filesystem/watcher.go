package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quarrydev/quarry/internal/logger"
)

// DefaultDebounce coalesces the burst of events an editor save emits.
const DefaultDebounce = 500 * time.Millisecond

// ChangeHandler is invoked with the path of a created or modified file
// once the debounce window has passed.
type ChangeHandler func(path string)

// RemoveHandler is invoked with the path of a removed or renamed-away
// file. Removals are not debounced.
type RemoveHandler func(path string)

// Watcher watches a directory tree and reports file changes. New
// subdirectories are added to the watch as they appear.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	debounce time.Duration
	handler  ChangeHandler
	onRemove RemoveHandler
}

// NewWatcher creates a watcher over the directory tree rooted at root.
func NewWatcher(root string, handler ChangeHandler) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watcher requires a change handler")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		root:     root,
		debounce: DefaultDebounce,
		handler:  handler,
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// OnRemove registers a handler for file removals. Optional; removals
// are dropped when no handler is set.
func (w *Watcher) OnRemove(handler RemoveHandler) {
	w.onRemove = handler
}

// Run processes events until the context is cancelled. Changed file
// paths are debounced per path before the handler fires.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, timer := range pending {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event, pending map[string]*time.Timer) {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if timer, ok := pending[event.Name]; ok {
			timer.Stop()
			delete(pending, event.Name)
		}
		if w.onRemove != nil {
			w.onRemove(event.Name)
		}
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("Failed to watch %s: %v", event.Name, err)
			}
		}
		return
	}

	path := event.Name
	if timer, ok := pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	pending[path] = time.AfterFunc(w.debounce, func() {
		w.handler(path)
	})
}

// addTree registers root and every subdirectory with the watcher.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
