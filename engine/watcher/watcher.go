// Package watcher reloads layout description files when they change on disk.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// ReloadFunc receives the result of reloading a watched layout file. err is set when the file
// no longer parses; root is nil in that case.
type ReloadFunc func(path string, root *layout.Node, err error)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu       sync.Mutex
	fs       *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]int
	onReload ReloadFunc
	initial  []string
	done     chan struct{}
	stopped  chan struct{}
	closed   bool
}

// Watcher watches layout description files and reloads them with layout.Load on every write.
// Directories are watched rather than files so editors that replace a file by renaming over it
// are still seen.
type Watcher interface {
	// Add starts watching a layout file.
	//
	// Parameters:
	//   - path: the layout file
	//
	// Returns:
	//   - error: an error if the watcher is closed or the directory cannot be watched
	Add(path string) error

	// Remove stops watching a layout file.
	//
	// Parameters:
	//   - path: the layout file
	//
	// Returns:
	//   - error: an error if the watcher is closed
	Remove(path string) error

	// Close stops the watcher and waits for its event loop to exit.
	//
	// Returns:
	//   - error: an error from the underlying notifier
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher starts a watcher whose event loop calls onReload for every reload.
//
// Parameters:
//   - onReload: the reload callback, called from the watcher's goroutine
//   - options: a variadic list of options to configure the watcher
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the notifier cannot be created
func NewWatcher(onReload ReloadFunc, options ...WatcherOption) (Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fs:       fs,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		onReload: onReload,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	for _, path := range w.initial {
		if err := w.Add(path); err != nil {
			common.Logger().Warn("layout not watched", "path", path, "err", err)
		}
	}
	go w.run()
	return w, nil
}

func (w *watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("watcher already closed")
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

func (w *watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("watcher already closed")
	}
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fs.Remove(dir)
	}
	return nil
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	<-w.stopped
	return w.fs.Close()
}

func (w *watcher) watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[path]
}

func (w *watcher) run() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path, err := filepath.Abs(e.Name)
			if err != nil || !w.watched(path) {
				continue
			}
			root, err := layout.Load(path)
			if err != nil {
				common.Logger().Warn("layout reload failed", "path", path, "err", err)
			} else {
				common.Logger().Debug("layout reloaded", "path", path, "digest", layout.DigestOf(root))
			}
			if w.onReload != nil {
				w.onReload(path, root, err)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			common.Logger().Error("layout watcher", "err", err)
		case <-w.done:
			return
		}
	}
}
