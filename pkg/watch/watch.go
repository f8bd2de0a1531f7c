// Package watch re-runs a callback when watched files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a burst of events is coalesced for.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports changes to a fixed set of files. Parent directories are
// watched rather than the files, so editors that save by rename are seen.
type Watcher struct {
	debounce time.Duration
	files    map[string]bool
	dirs     map[string]bool
}

// New returns a watcher for paths.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no files")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{debounce: debounce, files: map[string]bool{}, dirs: map[string]bool{}}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		w.files[abs] = true
		w.dirs[filepath.Dir(abs)] = true
	}
	return w, nil
}

// Run calls onChange with the absolute path of each changed file until ctx
// is cancelled. Calls for one path never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	for d := range w.dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	slog.Info("watching", "files", len(w.files), "debounce_ms", w.debounce.Milliseconds())

	var (
		timers  = map[string]*time.Timer{}
		running sync.WaitGroup
		locks   = map[string]*sync.Mutex{}
	)
	defer func() {
		for _, t := range timers {
			if t.Stop() {
				running.Done()
			}
		}
		running.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if !w.files[ev.Name] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			slog.Debug("file event", "path", ev.Name, "op", ev.Op.String())

			if t, ok := timers[ev.Name]; ok && t.Stop() {
				running.Done()
			}
			if locks[ev.Name] == nil {
				locks[ev.Name] = &sync.Mutex{}
			}
			path, lock := ev.Name, locks[ev.Name]
			running.Add(1)
			timers[ev.Name] = time.AfterFunc(w.debounce, func() {
				defer running.Done()
				if ctx.Err() != nil {
					return
				}
				lock.Lock()
				defer lock.Unlock()
				onChange(path)
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			slog.Warn("watch error", "error", err)
		}
	}
}
