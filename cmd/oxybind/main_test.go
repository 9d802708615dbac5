package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-bind/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
)

const sceneShader = `//@oxy:include global
//@oxy:include Particle
//@oxy:bind globals
//@oxy:bind particles $.particles
//@oxy:bind sky $.sky
//@oxy:bind sky_sampler $.sky_sampler

@fragment
fn main() -> @location(0) vec4f {
    return vec4f(globals.exposure);
}
`

const brokenShader = `@group(0) @binding(1) var<uniform> particles: vec4f;
@fragment fn main() {}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--color=off", "--log-level=error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scene.toml", sceneLayout)

	out, err := execute(t, "layout", "--digest", path)
	require.NoError(t, err)
	assert.Contains(t, out, "digest ")
	assert.Contains(t, out, "set 0")
	assert.Regexp(t, `0\s+uniform-buffer\s+80 bytes\s+\(global\)`, out)
	assert.Regexp(t, `1\s+read-only-storage-buffer\s+16 bytes\s+particles`, out)
	assert.Regexp(t, `2\s+texture\s+cube\s+sky`, out)
	assert.Regexp(t, `3\s+sampler\s+sky_sampler`, out)
}

func TestCursorCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scene.toml", sceneLayout)

	out, err := execute(t, "cursor", path, "$.particles[2].life")
	require.NoError(t, err)
	assert.Contains(t, out, "  set     0\n")
	assert.Contains(t, out, "  slot    1\n")
	assert.Contains(t, out, "  uniform 44\n")
	assert.Contains(t, out, "  size    4\n")

	_, err = execute(t, "cursor", path, "$.nope")
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	scene := writeFile(t, dir, "scene.toml", sceneLayout)
	other := writeFile(t, dir, "other.toml", "[global]\nfields = [{ name = \"tint\", type = \"vec4f\" }]\n")
	good := writeFile(t, dir, "scene.wgsl", sceneShader)
	bad := writeFile(t, dir, "broken.wgsl", brokenShader)

	out, err := execute(t, "check", scene, other)
	require.NoError(t, err)
	assert.Contains(t, out, "ok "+scene+" (1 sets)")
	assert.Contains(t, out, "ok "+other)

	out, err = execute(t, "check", "--wgsl", good, scene)
	require.NoError(t, err, out)

	out, err = execute(t, "check", "--wgsl", bad, scene)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "FAIL "+scene)
	assert.Contains(t, out, "@group(0) @binding(1) particles: shader declares a uniform-buffer")

	_, err = execute(t, "check", filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunScene(t *testing.T) {
	dev := backend.NewMemoryDevice()
	r := renderer.NewRenderer(dev, renderer.WithProfiler(profiler.NewProfiler()), renderer.WithWorkers(1))
	defer r.Release()

	summary, err := runScene(r, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.BindGroups)
	assert.Equal(t, uint64(9), summary.Reallocations, "the particle buffer changes size on every frame but the first")
	assert.Equal(t, uint64(10*4+2*39), summary.Writes)
	assert.Equal(t, uint64(10*(72+384)+39*16), summary.BytesWritten)
}

func TestDemoCommand(t *testing.T) {
	out, err := execute(t, "demo", "--frames", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "program scene")
	assert.Contains(t, out, "3 frames")
}

func TestUnknownColorMode(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--color=sometimes", "layout", "x.toml"})
	cmd.SetOut(&bytes.Buffer{})
	assert.ErrorContains(t, cmd.Execute(), "unknown color mode")
}
