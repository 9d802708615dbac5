package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lightSource = `package lights

import "github.com/Carmen-Shannon/oxy-bind/engine/writable"

type Light struct {
	Direction writable.Vec3
	Intensity float32
	Count     uint32
	Name      string ` + "`writable:\"-\"`" + `
	dirty     bool
}

type Box[T any] struct{ Value T }
`

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "light.go"), []byte(lightSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "light_test.go"), []byte("package lights\n\ntype Light struct{}\n"), 0o644))

	src, err := generate(dir, []string{"Light"})
	require.NoError(t, err)
	out := string(src)
	assert.Contains(t, out, generatedHeader+"\n\npackage lights\n")
	assert.Contains(t, out, "func (v Light) WriteAt(c reflection.Cursor, ctx *writable.UploadContext) error {")
	assert.Contains(t, out, "writable.ExpectStruct(c, 3)")
	assert.Contains(t, out, "writable.Field(c, 0, v.Direction, ctx)")
	assert.Contains(t, out, "writable.Field(c, 1, writable.F32(v.Intensity), ctx)")
	assert.Contains(t, out, "writable.Field(c, 2, writable.U32(v.Count), ctx)")
	assert.NotContains(t, out, "v.Name")
	assert.NotContains(t, out, "v.dirty")

	// A generated file in the package is ignored on the next run.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "light_writable.go"), src, 0o644))
	again, err := generate(dir, []string{"Light"})
	require.NoError(t, err)
	assert.Equal(t, src, again)
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "light.go"), []byte(lightSource), 0o644))

	_, err := generate(dir, []string{"Missing"})
	assert.ErrorContains(t, err, "no struct type of that name")
	_, err = generate(dir, []string{"Box"})
	assert.ErrorContains(t, err, "no struct type of that name", "generic structs are not supported")
	_, err = generate(dir, nil)
	assert.Error(t, err)
	_, err = generate(t.TempDir(), []string{"Light"})
	assert.ErrorContains(t, err, "no Go files")
}

func TestDemoSceneIsUpToDate(t *testing.T) {
	dir := filepath.Join("..", "oxybind")
	want, err := os.ReadFile(filepath.Join(dir, "particle_writable.go"))
	require.NoError(t, err)

	got, err := generate(dir, []string{"Particle", "SceneParams"})
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got), "run go generate in cmd/oxybind")
}

func TestCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "light.go"), []byte(lightSource), 0o644))

	rootCmd.SetArgs([]string{"--type", "Light", dir})
	require.NoError(t, rootCmd.Execute())
	_, err := os.Stat(filepath.Join(dir, "light_writable.go"))
	assert.NoError(t, err)
}
