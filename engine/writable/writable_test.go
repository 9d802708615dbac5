package writable

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/binding_resources"
)

func field(name string, n *layout.Node) layout.Field { return layout.NewField(name, n) }

// looseLayout holds a scalar and a matrix in the implicit constant buffer, then a buffer of
// vector pairs.
func looseLayout() *layout.Node {
	pair := layout.Struct("Pair",
		field("a", layout.Vector(layout.ScalarFloat32, 2)),
		field("b", layout.Vector(layout.ScalarFloat32, 2)),
	)
	return layout.Global(
		field("scale", layout.Scalar(layout.ScalarFloat32)),
		field("basis", layout.Matrix(layout.ScalarFloat32, 3, 3)),
		field("pairs", layout.StructuredBuffer(pair)),
	)
}

// materialLayout has no uniforms: a texture, its sampler and a skybox.
func materialLayout() *layout.Node {
	return layout.Global(
		field("albedo", layout.Texture(layout.ShapeTexture2D)),
		field("albedo_sampler", layout.Sampler()),
		field("sky", layout.Texture(layout.ShapeTextureCube)),
	)
}

type harness struct {
	root  *layout.Node
	table reflection.BindingTable
	dev   backend.MemoryDevice
	ctx   *UploadContext
}

func newHarness(t *testing.T, root *layout.Node) *harness {
	t.Helper()
	table, err := reflection.BuildBindingLayout(root)
	require.NoError(t, err)
	dev := backend.NewMemoryDevice()
	pool := binding_resources.NewBindingResources("test")
	_, err = pool.AllocateBuffers(dev, table)
	require.NoError(t, err)
	return &harness{
		root:  root,
		table: table,
		dev:   dev,
		ctx:   &UploadContext{Device: dev, Resources: pool, Stats: profiler.NewProfiler(profiler.WithUpdateInterval(time.Hour))},
	}
}

func (h *harness) floats(t *testing.T, set, slot int) []float32 {
	t.Helper()
	buf, err := h.ctx.Resources.Buffer(set, slot)
	require.NoError(t, err)
	data, err := h.dev.ReadBuffer(buf)
	require.NoError(t, err)
	return common.Float32sFromBytes(data)
}

func pairs(n int) StructuredBuffer[Writable] {
	items := make([]Writable, n)
	for i := range items {
		f := float32(i)
		items[i] = Struct(Vec2{f, f + 0.5}, Vec2{-f, -f - 0.5})
	}
	return StructuredBuffer[Writable]{Items: items}
}

func TestMatrixRowsArePadded(t *testing.T) {
	assert.Len(t, Identity3().Bytes(), 48)
	assert.Len(t, Identity4().Bytes(), 64)
	assert.Equal(t, []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}, common.Float32sFromBytes(Identity3().Bytes()))
}

func TestWriteLooseUniforms(t *testing.T) {
	h := newHarness(t, looseLayout())
	value := ConstantBuffer[Writable]{Value: Struct(F32(2), Identity3(), pairs(9))}
	require.NoError(t, Write(h.root, value, h.ctx))

	assert.Equal(t, []float32{
		2, 0, 0, 0,
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}, h.floats(t, 0, 0))

	points := h.floats(t, 0, 1)
	require.Len(t, points, 9*4)
	assert.Equal(t, []float32{-2, -2.5}, points[10:12], "pairs[2].b lives at byte 40")

	buf, err := h.ctx.Resources.Buffer(0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(144), buf.Size())
	assert.Equal(t, backend.BufferUsageStorage|backend.BufferUsageCopyDst, buf.Usage())
	assert.Equal(t, uint64(1), h.ctx.Stats.Reallocations())
}

func TestStructuredBufferShrinks(t *testing.T) {
	h := newHarness(t, looseLayout())
	write := func(n int) {
		require.NoError(t, Write(h.root, ConstantBuffer[Writable]{Value: Struct(F32(1), Identity3(), pairs(n))}, h.ctx))
	}

	write(9)
	first, err := h.ctx.Resources.Buffer(0, 1)
	require.NoError(t, err)
	write(3)
	second, err := h.ctx.Resources.Buffer(0, 1)
	require.NoError(t, err)

	assert.Equal(t, uint64(48), second.Size())
	assert.Equal(t, first.Label(), second.Label())
	_, err = h.dev.ReadBuffer(first)
	assert.ErrorIs(t, err, backend.ErrReleased)
	assert.Equal(t, uint64(2), h.ctx.Stats.Reallocations())

	write(3)
	assert.Equal(t, uint64(2), h.ctx.Stats.Reallocations(), "same length keeps the buffer")

	write(0)
	empty, err := h.ctx.Resources.Buffer(0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), empty.Size(), "an empty buffer keeps room for one element")
}

type looseParams struct {
	Scale float32
	Basis [3][3]float32
	Pairs StructuredBuffer[Writable]
	Debug int `writable:"-"`
	note  string
}

func TestDerive(t *testing.T) {
	h := newHarness(t, looseLayout())
	w, err := Derive(looseParams{Scale: 3, Basis: Identity3(), Pairs: pairs(2), Debug: 7, note: "skipped"})
	require.NoError(t, err)
	require.NoError(t, Write(h.root, ConstantBuffer[Writable]{Value: w}, h.ctx))

	uniforms := h.floats(t, 0, 0)
	assert.Equal(t, float32(3), uniforms[0])
	assert.Equal(t, float32(1), uniforms[4])

	_, err = Derive(struct{ Name string }{"x"})
	assert.ErrorContains(t, err, "value.Name: no layout mapping for string")
	_, err = Derive(nil)
	assert.Error(t, err)
}

func TestTypeMismatch(t *testing.T) {
	h := newHarness(t, looseLayout())
	cases := map[string]Writable{
		"integer at float":  ConstantBuffer[Writable]{Value: Struct(I32(2), Identity3(), pairs(1))},
		"vector at matrix":  ConstantBuffer[Writable]{Value: Struct(F32(2), Vec3{}, pairs(1))},
		"too few fields":    ConstantBuffer[Writable]{Value: Struct(F32(2), Identity3())},
		"missing container": Struct(F32(2), Identity3(), pairs(1)),
		"block at buffer":   ParameterBlock[Writable]{Value: Struct()},
		"texture at buffer": ConstantBuffer[Writable]{Value: Struct(F32(2), Identity3(), Texture{})},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, Write(h.root, v, h.ctx), ErrTypeMismatch)
		})
	}
}

func TestVectorAndMatrixShapes(t *testing.T) {
	root := layout.Global(
		field("offset", layout.Vector(layout.ScalarInt32, 2)),
		field("frame", layout.Matrix(layout.ScalarFloat32, 3, 4)),
		field("tint", layout.Vector(layout.ScalarFloat32, 4)),
	)
	h := newHarness(t, root)
	skip := WriterFunc(func(reflection.Cursor, *UploadContext) error { return nil })
	cases := map[string]Writable{
		"float vector at integer vector": Struct(Vec2{1, 2}, skip, skip),
		"3x3 matrix at 3x4 matrix":       Struct(skip, Identity3(), skip),
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, Write(h.root, ConstantBuffer[Writable]{Value: v}, h.ctx), ErrTypeMismatch)
		})
	}

	require.NoError(t, Write(h.root, ConstantBuffer[Writable]{Value: Struct(skip, skip, Vec4{1, 2, 3, 4})}, h.ctx))
	assert.Equal(t, []float32{1, 2, 3, 4}, h.floats(t, 0, 0)[16:20])
}

func TestWriteWithoutBuffers(t *testing.T) {
	root := looseLayout()
	ctx := &UploadContext{Device: backend.NewMemoryDevice(), Resources: binding_resources.NewBindingResources("bare")}
	err := Write(root, ConstantBuffer[Writable]{Value: Struct(F32(1), Identity3(), pairs(1))}, ctx)
	assert.ErrorIs(t, err, binding_resources.ErrMissingResource)
}

func TestStructuredBufferNeedsPoolEntry(t *testing.T) {
	pair := layout.Struct("Pair", field("a", layout.Vector(layout.ScalarFloat32, 2)))
	root := layout.Global(field("pairs", layout.StructuredBuffer(pair)))
	pool := binding_resources.NewBindingResources("bare")
	ctx := &UploadContext{Device: backend.NewMemoryDevice(), Resources: pool}

	items := StructuredBuffer[Writable]{Items: []Writable{Struct(Vec2{1, 2})}}
	err := Write(root, Struct(items), ctx)
	assert.ErrorIs(t, err, binding_resources.ErrMissingResource)

	_, err = pool.Buffer(0, 0)
	assert.ErrorIs(t, err, binding_resources.ErrMissingResource, "no buffer is created behind the pool's back")
}

// storageLayout is a storage block with a count header and a runtime-sized array of vectors.
func storageLayout() *layout.Node {
	particles := layout.Struct("Particles",
		field("count", layout.Scalar(layout.ScalarUint32)),
		field("data", layout.Array(layout.Vector(layout.ScalarFloat32, 4), 0)),
	)
	return layout.Global(field("particles", layout.ShaderStorageBuffer(particles)))
}

func TestShaderStorageBufferGrowsToFit(t *testing.T) {
	h := newHarness(t, storageLayout())
	require.Equal(t, 16, h.table[0][0].Capacity, "the table sizes the block to its header")
	write := func(data ...Writable) {
		block := ShaderStorageBuffer[Writable]{Value: Struct(U32(len(data)), List[Writable](data))}
		require.NoError(t, Write(h.root, Struct(block), h.ctx))
	}

	write(Vec4{1, 2, 3, 4}, Vec4{5, 6, 7, 8})
	buf, err := h.ctx.Resources.Buffer(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(48), buf.Size())
	assert.Equal(t, "test particles [0:0]", buf.Label(), "a resized buffer keeps its label")
	assert.Equal(t, backend.BufferUsageStorage|backend.BufferUsageCopyDst, buf.Usage())
	data, err := h.dev.ReadBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[:4]))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, common.Float32sFromBytes(data[16:]))
	assert.Equal(t, uint64(1), h.ctx.Stats.Reallocations())

	write(Vec4{9, 9, 9, 9}, Vec4{})
	assert.Equal(t, uint64(1), h.ctx.Stats.Reallocations(), "same length keeps the buffer")

	write()
	empty, err := h.ctx.Resources.Buffer(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), empty.Size(), "an empty array shrinks back to the header")
	assert.Equal(t, uint64(2), h.ctx.Stats.Reallocations())
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func cube(edge int) Texture {
	var faces [6]image.Image
	for i := range faces {
		faces[i] = solid(edge, edge, color.RGBA{R: uint8(i * 40), A: 255})
	}
	return NewCubeTexture(faces)
}

func TestTextureCreatedAndReplaced(t *testing.T) {
	h := newHarness(t, materialLayout())
	write := func(albedo Texture) {
		require.NoError(t, Write(h.root, Struct(albedo, Sampler{}, cube(2)), h.ctx))
	}

	write(NewTexture2D(solid(2, 2, color.White)))
	assert.Equal(t, 5, h.dev.Live(), "two textures, two views and a sampler")
	first, err := h.ctx.Resources.Texture(0, 0)
	require.NoError(t, err)
	assert.Zero(t, h.ctx.Stats.Reallocations())

	write(NewTexture2D(solid(2, 2, color.Black)))
	same, err := h.ctx.Resources.Texture(0, 0)
	require.NoError(t, err)
	assert.Same(t, first, same)
	pixels, err := h.dev.ReadTexture(same)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 255}, pixels[:4])

	write(NewTexture2D(solid(4, 4, color.White)))
	replaced, err := h.ctx.Resources.Texture(0, 0)
	require.NoError(t, err)
	assert.Equal(t, backend.Extent{Width: 4, Height: 4, Layers: 1}, replaced.Extent())
	assert.Equal(t, uint64(1), h.ctx.Stats.Reallocations())
	assert.Equal(t, 5, h.dev.Live(), "the old texture and view are released")

	for _, set := range h.table.Sets() {
		entries, err := h.ctx.Resources.Entries(set, h.table[set])
		require.NoError(t, err)
		bgl, err := h.dev.CreateBindGroupLayout("material", h.table[set])
		require.NoError(t, err)
		_, err = h.dev.CreateBindGroup("material", bgl, entries)
		assert.NoError(t, err)
	}
}

func TestTextureShapeMismatch(t *testing.T) {
	h := newHarness(t, materialLayout())
	flat := NewTexture2D(solid(2, 2, color.White))
	err := Write(h.root, Struct(flat, Sampler{}, flat), h.ctx)
	assert.ErrorIs(t, err, ErrTypeMismatch, "a single layer cannot fill a cube")

	err = Write(h.root, Struct(Texture{}, Sampler{}, cube(2)), h.ctx)
	assert.ErrorContains(t, err, "empty")
}

func TestCubeFacesAreResized(t *testing.T) {
	faces := [6]image.Image{solid(4, 4, color.White)}
	for i := 1; i < 6; i++ {
		faces[i] = solid(2, 3, color.Black)
	}
	tex := NewCubeTexture(faces)
	assert.Equal(t, uint32(4), tex.Width)
	assert.Equal(t, uint32(4), tex.Height)
	assert.NoError(t, tex.Validate())
	assert.Len(t, tex.Pixels, 4*4*4*6)
}

func TestSamplerCreatedOnce(t *testing.T) {
	h := newHarness(t, materialLayout())
	albedo := NewTexture2D(solid(1, 1, color.White))

	require.NoError(t, Write(h.root, Struct(albedo, Sampler{}, cube(1)), h.ctx))
	first, err := h.ctx.Resources.Sampler(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "test albedo_sampler", first.Label())

	nearest := Sampler{Descriptor: backend.SamplerDescriptor{MagFilter: backend.FilterModeNearest}}
	require.NoError(t, Write(h.root, Struct(albedo, nearest, cube(1)), h.ctx))
	second, err := h.ctx.Resources.Sampler(0, 1)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
