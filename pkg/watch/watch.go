// Package watch reports batches of filesystem changes under a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/XiaoConstantine/minigrep/pkg/util"
	"github.com/XiaoConstantine/minigrep/pkg/walk"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches every directory the walker would scan under a root.
type Watcher struct {
	root     string
	walker   *walk.Walker
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// New registers root and its walkable subdirectories. When root is a
// regular file only that file is watched.
func New(root string, walker *walk.Walker) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{root: root, walker: walker, watcher: fw, debounce: DefaultDebounce}

	info, err := os.Stat(root)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if err := fw.Add(root); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
		return w, nil
	}

	dirs, err := walker.Dirs(root)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	util.Debugf(util.DebugSummary, "watching %d directories under %s", len(dirs), root)
	return w, nil
}

// SetDebounce overrides DefaultDebounce. Must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run delivers debounced batches of changed paths to onChange until ctx is
// cancelled or the watcher is closed. onChange is never called concurrently
// and is not called after Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		timer   *time.Timer
	)
	fire := make(chan struct{}, 1)

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]bool)
		mu.Unlock()

		if len(paths) == 0 {
			return
		}
		sort.Strings(paths)
		onChange(paths)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-fire:
			flush()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.track(event)

			mu.Lock()
			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
			mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			util.Warnf("watch error: %v", err)
		}
	}
}

// track starts watching directories created after New.
func (w *Watcher) track(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	info, err := os.Lstat(event.Name)
	if err != nil || !info.IsDir() || w.walker.IgnoresDir(event.Name) {
		return
	}
	dirs, err := w.walker.Dirs(event.Name)
	if err != nil {
		util.Debugf(util.DebugSummary, "watch new dir %s: %v", event.Name, err)
		return
	}
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			util.Debugf(util.DebugSummary, "watch new dir %s: %v", dir, err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
