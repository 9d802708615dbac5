package layoutcache

// CacheOption is a functional option used to configure a Cache during construction.
type CacheOption func(*cache)

// WithDir stores entries in dir instead of the user cache directory.
//
// Parameters:
//   - dir: the directory to store entries in
//
// Returns:
//   - CacheOption: a function that sets the directory
func WithDir(dir string) CacheOption {
	return func(c *cache) {
		c.dir = dir
	}
}
