package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the config file when it changes on disk. Successive
// filesystem notifications within the debounce window collapse into one
// reload; editors commonly write a file in several operations.
type Watcher struct {
	path  string
	store *Store

	debounce time.Duration

	// OnReload receives every successfully applied configuration.
	OnReload func(Config)
	// OnError receives reload failures; the previous config stays live.
	OnError func(error)
}

// NewWatcher builds a watcher that applies validated reloads to the store.
func NewWatcher(path string, store *Store) *Watcher {
	return &Watcher{
		path:     path,
		store:    store,
		debounce: defaultDebounce,
	}
}

// Run watches until the context is cancelled. The parent directory is
// watched rather than the file itself so that the watch survives editors
// that replace the file by rename.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(w.path)
	lastReload := time.Now().Add(-w.debounce)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(lastReload) < w.debounce {
				continue
			}
			lastReload = time.Now()
			w.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError(fmt.Errorf("config watch: %w", err))
			}
		}
	}
}

// Reload re-reads the file immediately, outside the debounce window. Used
// by the UI's manual reload key.
func (w *Watcher) Reload() {
	w.reload()
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		if w.OnError != nil {
			w.OnError(fmt.Errorf("config reload failed: %w", err))
		}
		return
	}
	w.store.Replace(cfg)
	if w.OnReload != nil {
		w.OnReload(cfg)
	}
}
