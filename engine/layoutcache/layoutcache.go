// Package layoutcache persists binding tables on disk, keyed by the digest of the layout they
// were built from, so a program whose layout has not changed skips the binding-layout builder.
package layoutcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// schemaVersion is bumped whenever the entry format changes; older entries read as misses.
const schemaVersion uint16 = 1

// entry is the on-disk form of a cached table.
type entry struct {
	Schema     uint16                  `msgpack:"schema"`
	Digest     string                  `msgpack:"digest"`
	Visibility reflection.ShaderStage  `msgpack:"visibility"`
	Table      reflection.BindingTable `msgpack:"table"`
}

// cache is the unexported implementation of Cache.
type cache struct {
	mu  sync.RWMutex
	dir string
}

// Cache stores binding tables on disk. It is safe for concurrent use; writes go through a
// temporary file and a rename, so readers never see a partial entry.
type Cache interface {
	// Get reads the table built from a layout with the given digest and visibility.
	//
	// Parameters:
	//   - digest: the layout digest
	//   - visibility: the stage visibility the table was built with
	//
	// Returns:
	//   - reflection.BindingTable: the cached table
	//   - bool: false on a miss, including entries of an older schema
	//   - error: a read or decode error
	Get(digest layout.Digest, visibility reflection.ShaderStage) (reflection.BindingTable, bool, error)

	// Put stores a table under a digest and visibility, replacing any previous entry.
	//
	// Parameters:
	//   - digest: the layout digest
	//   - visibility: the stage visibility the table was built with
	//   - table: the table to store
	//
	// Returns:
	//   - error: a write error
	Put(digest layout.Digest, visibility reflection.ShaderStage, table reflection.BindingTable) error

	// Dir returns the directory entries are stored in.
	//
	// Returns:
	//   - string: the cache directory
	Dir() string

	// DropAll removes every entry.
	//
	// Returns:
	//   - error: a removal error
	DropAll() error
}

var _ Cache = &cache{}

// NewCache opens a cache, creating its directory. Without WithDir the cache lives in
// $XDG_CACHE_HOME/oxy-bind/tables, falling back to ~/.cache.
//
// Parameters:
//   - options: a variadic list of options to configure the cache
//
// Returns:
//   - Cache: the opened cache
//   - error: an error if the directory cannot be created
func NewCache(options ...CacheOption) (Cache, error) {
	c := &cache{}
	for _, opt := range options {
		opt(c)
	}
	if c.dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		c.dir = filepath.Join(base, "oxy-bind", "tables")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, err
	}
	return c, nil
}

// Build returns the table for root from c, building and storing it on a miss. A nil cache
// always builds.
//
// Parameters:
//   - c: the cache, may be nil
//   - root: the program's root layout node
//   - options: options passed to reflection.BuildBindingLayout
//
// Returns:
//   - reflection.BindingTable: the table
//   - bool: true if the table came from the cache
//   - error: a build error, or a cache read or write error
func Build(c Cache, root *layout.Node, options ...reflection.BuildOption) (reflection.BindingTable, bool, error) {
	if c == nil {
		table, err := reflection.BuildBindingLayout(root, options...)
		return table, false, err
	}

	digest := layout.DigestOf(root)
	visibility := reflection.VisibilityOf(options...)
	table, ok, err := c.Get(digest, visibility)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return table, true, nil
	}
	table, err = reflection.BuildBindingLayout(root, options...)
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(digest, visibility, table); err != nil {
		return nil, false, err
	}
	return table, false, nil
}

func (c *cache) pathFor(digest layout.Digest, visibility reflection.ShaderStage) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s-%x.mp", digest, uint32(visibility)))
}

func (c *cache) Get(digest layout.Digest, visibility reflection.ShaderStage) (reflection.BindingTable, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(digest, visibility))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var e entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("decoding cached table %s: %w", digest, err)
	}
	if e.Schema != schemaVersion || e.Digest != digest.String() || e.Visibility != visibility {
		return nil, false, nil
	}
	if e.Table == nil {
		e.Table = reflection.BindingTable{}
	}
	return e.Table, true, nil
}

func (c *cache) Put(digest layout.Digest, visibility reflection.ShaderStage, table reflection.BindingTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(digest, visibility)
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	err = msgpack.NewEncoder(f).Encode(&entry{
		Schema:     schemaVersion,
		Digest:     digest.String(),
		Visibility: visibility,
		Table:      table,
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("encoding table %s: %w", digest, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

func (c *cache) Dir() string {
	return c.dir
}

func (c *cache) DropAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
