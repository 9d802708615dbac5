package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

const lightLayout = `
[[struct]]
name = "Light"
fields = [
  { name = "direction", type = "vec3<f32>" },
  { name = "intensity", type = "f32" },
]

[global]
fields = [
  { name = "light", type = "ConstantBuffer<Light>" },
]
`

type reloads struct {
	mu   sync.Mutex
	got  []*layout.Node
	errs []error
}

func (r *reloads) record(_ string, root *layout.Node, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errs = append(r.errs, err)
		return
	}
	r.got = append(r.got, root)
}

func (r *reloads) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got), len(r.errs)
}

func TestReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.toml")
	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(path, []byte(lightLayout), 0o644))

	var r reloads
	w, err := NewWatcher(r.record, WithFiles(path))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte(lightLayout), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(lightLayout), 0o644))
	require.Eventually(t, func() bool {
		ok, _ := r.counts()
		return ok > 0
	}, 2*time.Second, 10*time.Millisecond)

	r.mu.Lock()
	root := r.got[0]
	r.mu.Unlock()
	assert.Equal(t, "light", root.Fields()[0].Name)

	require.NoError(t, os.WriteFile(path, []byte("[global]\nfields = [{ name = \"x\", type = \"Nope\" }]\n"), 0o644))
	require.Eventually(t, func() bool {
		_, bad := r.counts()
		return bad > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRemoveAndClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.toml")
	require.NoError(t, os.WriteFile(path, []byte(lightLayout), 0o644))

	var r reloads
	w, err := NewWatcher(r.record)
	require.NoError(t, err)
	require.NoError(t, w.Add(path))
	require.NoError(t, w.Add(path))
	require.NoError(t, w.Remove(path))

	require.NoError(t, os.WriteFile(path, []byte(lightLayout), 0o644))
	time.Sleep(100 * time.Millisecond)
	ok, bad := r.counts()
	assert.Zero(t, ok+bad)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorContains(t, w.Add(path), "closed")
}

func TestAddMissingDirectory(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing", "program.toml")))
}
