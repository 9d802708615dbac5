package binding_resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
)

func testTable() reflection.BindingTable {
	return reflection.BindingTable{
		0: {
			{Slot: 0, Kind: reflection.BindingUniformBuffer, Capacity: 64, Name: "camera"},
			{Slot: 1, Kind: reflection.BindingTexture, ViewDimension: layout.ViewDimension2D, Name: "albedo"},
			{Slot: 2, Kind: reflection.BindingSampler, Name: "albedo_sampler"},
		},
		1: {
			{Slot: 0, Kind: reflection.BindingReadOnlyStorageBuffer, Capacity: 16, Name: "points"},
		},
	}
}

func TestLookupMissing(t *testing.T) {
	pool := NewBindingResources("test")
	_, err := pool.Buffer(0, 0)
	assert.ErrorIs(t, err, ErrMissingResource)
	_, err = pool.Texture(1, 3)
	assert.ErrorIs(t, err, ErrMissingResource)
	_, err = pool.TextureView(0, 0)
	assert.ErrorIs(t, err, ErrMissingResource)
	_, err = pool.Sampler(0, 0)
	assert.ErrorIs(t, err, ErrMissingResource)
	assert.Empty(t, pool.Sets())
}

func TestAllocateBuffers(t *testing.T) {
	dev := backend.NewMemoryDevice()
	pool := NewBindingResources("test")

	n, err := pool.AllocateBuffers(dev, testTable())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	camera, err := pool.Buffer(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), camera.Size())
	assert.Equal(t, backend.BufferUsageUniform|backend.BufferUsageCopyDst, camera.Usage())

	points, err := pool.Buffer(1, 0)
	require.NoError(t, err)
	assert.Equal(t, backend.BufferUsageStorage|backend.BufferUsageCopyDst, points.Usage())

	n, err = pool.AllocateBuffers(dev, testTable())
	require.NoError(t, err)
	assert.Zero(t, n, "existing buffers are kept")
	assert.Equal(t, []int{0, 1}, pool.Sets())
}

func TestSetReleasesReplacedHandle(t *testing.T) {
	dev := backend.NewMemoryDevice()
	pool := NewBindingResources("test")

	first, err := dev.CreateBuffer(backend.BufferDescriptor{Size: 16, Usage: backend.BufferUsageStorage | backend.BufferUsageCopyDst})
	require.NoError(t, err)
	second, err := dev.CreateBuffer(backend.BufferDescriptor{Size: 32, Usage: backend.BufferUsageStorage | backend.BufferUsageCopyDst})
	require.NoError(t, err)

	pool.SetBuffer(2, 1, first)
	pool.SetBuffer(2, 1, first)
	assert.Equal(t, 2, dev.Live(), "storing the same handle again releases nothing")

	pool.SetBuffer(2, 1, second)
	assert.Equal(t, 1, dev.Live())
	got, err := pool.Buffer(2, 1)
	require.NoError(t, err)
	assert.Same(t, second, got)

	_, err = dev.ReadBuffer(first)
	assert.ErrorIs(t, err, backend.ErrReleased)
}

func TestEntriesJoinBySlot(t *testing.T) {
	dev := backend.NewMemoryDevice()
	table := testTable()
	pool := NewBindingResources("test")
	_, err := pool.AllocateBuffers(dev, table)
	require.NoError(t, err)

	_, err = pool.Entries(0, table[0])
	assert.ErrorIs(t, err, ErrMissingResource, "texture and sampler are created by their writers")

	tex, err := dev.CreateTexture(backend.TextureDescriptor{Extent: backend.Extent{Width: 1, Height: 1, Layers: 1}})
	require.NoError(t, err)
	view, err := dev.CreateTextureView(tex, layout.ViewDimension2D)
	require.NoError(t, err)
	samp, err := dev.CreateSampler(backend.SamplerDescriptor{})
	require.NoError(t, err)
	pool.SetTexture(0, 1, tex)
	pool.SetTextureView(0, 1, view)
	pool.SetSampler(0, 2, samp)

	entries, err := pool.Entries(0, table[0])
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.NotNil(t, entries[0].Buffer)
	assert.Same(t, view, entries[1].TextureView)
	assert.Same(t, samp, entries[2].Sampler)

	bgl, err := dev.CreateBindGroupLayout("set 0", table[0])
	require.NoError(t, err)
	_, err = dev.CreateBindGroup("set 0", bgl, entries)
	assert.NoError(t, err)
}

func TestRelease(t *testing.T) {
	dev := backend.NewMemoryDevice()
	samp, err := dev.CreateSampler(backend.SamplerDescriptor{})
	require.NoError(t, err)
	pool := NewBindingResources("test", WithSampler(0, 2, samp))
	_, err = pool.AllocateBuffers(dev, testTable())
	require.NoError(t, err)
	assert.Equal(t, 3, dev.Live())

	pool.Release()
	assert.Equal(t, 1, dev.Live(), "the shared sampler stays with its owner")
	assert.Empty(t, pool.Sets())

	samp.Release()
	assert.Zero(t, dev.Live())
}

func TestSharedSamplerSurvivesReplacement(t *testing.T) {
	dev := backend.NewMemoryDevice()
	shared, err := dev.CreateSampler(backend.SamplerDescriptor{})
	require.NoError(t, err)
	first := NewBindingResources("first", WithSampler(0, 2, shared))
	second := NewBindingResources("second", WithSampler(0, 2, shared))

	own, err := dev.CreateSampler(backend.SamplerDescriptor{})
	require.NoError(t, err)
	first.SetSampler(0, 2, own)
	first.Release()
	assert.Equal(t, 1, dev.Live(), "only the pool's own sampler is released")

	got, err := second.Sampler(0, 2)
	require.NoError(t, err)
	assert.Same(t, shared, got)
	second.Release()
	assert.Equal(t, 1, dev.Live())
}
