package settings

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a settings file's directory and reloads Settings
// whenever the file's content actually changes, adapted from a
// fsnotify-based config hot-reloader: watch the directory (not the file
// itself, so editors that replace-via-rename still trigger), filter by
// exact filename, and dedupe via a content checksum rather than
// reacting to every write event.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	mu         sync.Mutex
	isWatching bool
}

// Change is delivered on the channel returned by Watch whenever the
// settings file's content changes.
type Change struct {
	Settings Settings
	Checksum string
}

// NewWatcher creates a Watcher for the settings file at path.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{path: path, watcher: fw}, nil
}

// Watch begins watching and returns channels of Change and error events.
// Calling Watch twice on the same Watcher is a no-op that returns closed
// channels.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, <-chan error) {
	changes := make(chan Change, 10)
	errs := make(chan error, 10)

	w.mu.Lock()
	if w.isWatching {
		w.mu.Unlock()
		close(changes)
		close(errs)
		return changes, errs
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Unlock()
		errs <- fmt.Errorf("watch dir %s: %w", dir, err)
		close(changes)
		close(errs)
		return changes, errs
	}
	w.isWatching = true
	w.mu.Unlock()

	go w.run(ctx, changes, errs)

	return changes, errs
}

func (w *Watcher) run(ctx context.Context, changes chan<- Change, errs chan<- error) {
	defer close(changes)
	defer close(errs)

	var lastChecksum string

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			loaded, err := Load(w.path)
			if err != nil {
				errs <- err
				continue
			}

			checksum := checksumOf(loaded)
			if checksum == lastChecksum {
				continue
			}
			lastChecksum = checksum

			changes <- Change{Settings: loaded, Checksum: checksum}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			errs <- err
		}
	}
}

// Stop halts watching and releases the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isWatching {
		return nil
	}
	w.isWatching = false
	return w.watcher.Close()
}

func checksumOf(s Settings) string {
	data, _ := json.Marshal(s)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
