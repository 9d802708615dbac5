package watcher

// WatcherOption is a functional option used to configure a Watcher during construction.
type WatcherOption func(*watcher)

// WithFiles adds layout files to watch as soon as the watcher starts. Files that cannot be
// watched are logged and skipped; use Add to observe the error.
//
// Parameters:
//   - paths: the layout files
//
// Returns:
//   - WatcherOption: a function that registers the files
func WithFiles(paths ...string) WatcherOption {
	return func(w *watcher) {
		w.initial = append(w.initial, paths...)
	}
}
