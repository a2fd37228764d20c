// Package watcher reports changes to a set of configuration files using
// fsnotify, with debouncing.
package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches files for writes, creations, renames and removals.
// Editors often replace files instead of writing them in place, so the
// parent directories are watched and events are filtered by path.
type Watcher struct {
	paths    map[string]bool
	dirs     []string
	debounce time.Duration
	logger   *slog.Logger

	debouncer *Debouncer
	fsw       *fsnotify.Watcher
	changed   chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	started   bool
	stopped   bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long events are coalesced.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// NewWatcher creates a watcher for paths. It does nothing until Start.
func NewWatcher(paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watcher: no paths to watch")
	}
	w := &Watcher{
		paths:    make(map[string]bool, len(paths)),
		debounce: DefaultDebounceDuration,
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	seenDirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watcher: resolving %s: %w", p, err)
		}
		w.paths[abs] = true
		if dir := filepath.Dir(abs); !seenDirs[dir] {
			seenDirs[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

func (w *Watcher) log() *slog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return slog.Default()
}

// Start begins watching. Directories that cannot be watched are logged
// and skipped; Start fails only when none can be watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("watcher: already stopped")
	}
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	var added int
	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			w.log().Warn("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		added++
	}
	if added == 0 {
		fsw.Close()
		return fmt.Errorf("watcher: none of %d directories could be watched", len(w.dirs))
	}

	w.fsw = fsw
	w.started = true
	w.wg.Add(1)
	go w.run()
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log().Debug("config file event", "path", ev.Name, "op", ev.Op.String())
			w.debouncer.Trigger(w.notify)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log().Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.paths[abs]
}

// notify never blocks; pending notifications collapse into one.
func (w *Watcher) notify() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

// Changed delivers a value after each debounced burst of changes.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Done is closed when the watcher stops.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Paths lists the watched files, sorted.
func (w *Watcher) Paths() []string {
	out := make([]string, 0, len(w.paths))
	for p := range w.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Stop ends watching. It is safe to call more than once; a stopped
// watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.done)
	started := w.started
	w.mu.Unlock()

	if !started {
		return
	}
	w.wg.Wait()
	w.debouncer.Cancel()
	w.fsw.Close()
}
