// Package fswatch turns filesystem activity in the receiving tree into
// scan triggers, so fresh drops are picked up without waiting for the
// next interval scan.
package fswatch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the receiving directory (and its subdirectories) and
// emits a debounced trigger after activity settles. fsnotify does not
// recurse, so subdirectories are added as they are seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	debounce time.Duration
	triggers chan struct{}
	logger   *slog.Logger

	once sync.Once
	done chan struct{}
}

// New creates a Watcher rooted at dir. Existing subdirectories are
// registered immediately; new ones are registered as create events arrive.
func New(dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		root:     dir,
		debounce: debounce,
		triggers: make(chan struct{}, 1),
		logger:   logger,
		done:     make(chan struct{}),
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Triggers returns the channel the pipeline selects on. The channel has a
// buffer of one; coalescing bursts into a single scan is the point.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.triggers
}

// Start consumes fsnotify events until the context is cancelled or Close
// is called. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				w.addIfDir(event.Name)
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			select {
			case w.triggers <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// addIfDir registers a newly created source or issue directory.
func (w *Watcher) addIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Debug("watch add failed", "path", path, "error", err)
	}
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.watcher.Close()
}
