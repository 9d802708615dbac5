package backend

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// MemoryDevice is a Device backed by host memory. Every buffer and texture keeps its bytes so
// they can be read back, which makes it the device of choice for tests and dry runs.
type MemoryDevice interface {
	Device

	// ReadBuffer returns a copy of a buffer's contents.
	//
	// Parameters:
	//   - buf: a buffer created by this device
	//
	// Returns:
	//   - []byte: the buffer's bytes
	//   - error: ErrForeignHandle or ErrReleased
	ReadBuffer(buf Buffer) ([]byte, error)

	// ReadTexture returns a copy of a texture's RGBA8 pixels, layer after layer.
	//
	// Parameters:
	//   - tex: a texture created by this device
	//
	// Returns:
	//   - []byte: the texture's pixels
	//   - error: ErrForeignHandle or ErrReleased
	ReadTexture(tex Texture) ([]byte, error)

	// Live returns the number of created resources that have not been released.
	//
	// Returns:
	//   - int: the live resource count
	Live() int

	// BytesWritten returns the total number of bytes uploaded through WriteBuffer and WriteTexture.
	//
	// Returns:
	//   - uint64: the uploaded byte count
	BytesWritten() uint64
}

type memoryDevice struct {
	maxBufferSize uint64
	live          atomic.Int64
	written       atomic.Uint64
}

var _ MemoryDevice = &memoryDevice{}

type memoryResource struct {
	dev      *memoryDevice
	label    string
	released bool
}

func (r *memoryResource) Label() string { return r.label }

func (r *memoryResource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.dev.live.Add(-1)
}

type memoryBuffer struct {
	memoryResource
	usage BufferUsage
	data  []byte
}

func (b *memoryBuffer) Size() uint64       { return uint64(len(b.data)) }
func (b *memoryBuffer) Usage() BufferUsage { return b.usage }

type memoryTexture struct {
	memoryResource
	extent Extent
	pixels []byte
}

func (t *memoryTexture) Extent() Extent { return t.extent }

type memoryTextureView struct {
	memoryResource
	texture   *memoryTexture
	dimension layout.ViewDimension
}

func (v *memoryTextureView) Texture() Texture                { return v.texture }
func (v *memoryTextureView) Dimension() layout.ViewDimension { return v.dimension }

type memorySampler struct {
	memoryResource
	desc SamplerDescriptor
}

type memoryBindGroupLayout struct {
	memoryResource
	entries []reflection.BindingDescriptor
}

func (l *memoryBindGroupLayout) Entries() []reflection.BindingDescriptor { return l.entries }

type memoryBindGroup struct {
	memoryResource
	layout  BindGroupLayout
	entries []BindGroupEntry
}

func (g *memoryBindGroup) Layout() BindGroupLayout   { return g.layout }
func (g *memoryBindGroup) Entries() []BindGroupEntry { return g.entries }

// NewMemoryDevice creates a host-memory device.
//
// Parameters:
//   - options: a variadic list of options to configure the device
//
// Returns:
//   - MemoryDevice: the new device
func NewMemoryDevice(options ...MemoryDeviceOption) MemoryDevice {
	d := &memoryDevice{
		maxBufferSize: defaultMaxBufferSize,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *memoryDevice) resource(label string) memoryResource {
	d.live.Add(1)
	return memoryResource{dev: d, label: label}
}

func (d *memoryDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	if desc.Size > d.maxBufferSize {
		return nil, fmt.Errorf("buffer %q: size %d exceeds the device limit of %d", desc.Label, desc.Size, d.maxBufferSize)
	}
	if desc.Usage == 0 {
		return nil, fmt.Errorf("buffer %q: no usage flags", desc.Label)
	}
	return &memoryBuffer{
		memoryResource: d.resource(desc.Label),
		usage:          desc.Usage,
		data:           make([]byte, desc.Size),
	}, nil
}

func (d *memoryDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	b, err := d.buffer(buf)
	if err != nil {
		return err
	}
	if b.usage&BufferUsageCopyDst == 0 {
		return fmt.Errorf("buffer %q is not a copy destination", b.label)
	}
	if offset%4 != 0 || len(data)%4 != 0 {
		return fmt.Errorf("%w: buffer %q: write of %d bytes at %d is not 4-byte aligned", ErrOutOfBounds, b.label, len(data), offset)
	}
	end := offset + uint64(len(data))
	if end > uint64(len(b.data)) {
		return fmt.Errorf("%w: buffer %q: bytes [%d, %d) past its size of %d", ErrOutOfBounds, b.label, offset, end, len(b.data))
	}
	copy(b.data[offset:end], data)
	d.written.Add(uint64(len(data)))
	return nil
}

func (d *memoryDevice) CreateTexture(desc TextureDescriptor) (Texture, error) {
	e := desc.Extent
	if e.Width == 0 || e.Height == 0 || e.Layers == 0 {
		return nil, fmt.Errorf("texture %q: empty extent %dx%dx%d", desc.Label, e.Width, e.Height, e.Layers)
	}
	return &memoryTexture{
		memoryResource: d.resource(desc.Label),
		extent:         e,
		pixels:         make([]byte, int(e.Width)*int(e.Height)*int(e.Layers)*4),
	}, nil
}

func (d *memoryDevice) WriteTexture(tex Texture, data common.TextureStagingData) error {
	t, ok := tex.(*memoryTexture)
	if !ok || t.dev != d {
		return ErrForeignHandle
	}
	if t.released {
		return fmt.Errorf("%w: texture %q", ErrReleased, t.label)
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Width != t.extent.Width || data.Height != t.extent.Height || data.LayerCount() != t.extent.Layers {
		return fmt.Errorf("%w: texture %q is %dx%dx%d, upload is %dx%dx%d", ErrOutOfBounds, t.label,
			t.extent.Width, t.extent.Height, t.extent.Layers, data.Width, data.Height, data.LayerCount())
	}
	copy(t.pixels, data.Pixels)
	d.written.Add(uint64(len(data.Pixels)))
	return nil
}

func (d *memoryDevice) CreateTextureView(tex Texture, dim layout.ViewDimension) (TextureView, error) {
	t, ok := tex.(*memoryTexture)
	if !ok || t.dev != d {
		return nil, ErrForeignHandle
	}
	if t.released {
		return nil, fmt.Errorf("%w: texture %q", ErrReleased, t.label)
	}
	switch dim {
	case layout.ViewDimension1D, layout.ViewDimension2D, layout.ViewDimensionCube:
		if dim.Layers() != t.extent.Layers {
			return nil, fmt.Errorf("texture %q has %d layers, a %s view needs %d", t.label, t.extent.Layers, dim, dim.Layers())
		}
	case layout.ViewDimensionCubeArray:
		if t.extent.Layers%6 != 0 {
			return nil, fmt.Errorf("texture %q has %d layers, not a multiple of 6", t.label, t.extent.Layers)
		}
	}
	return &memoryTextureView{
		memoryResource: d.resource(t.label + " View"),
		texture:        t,
		dimension:      dim,
	}, nil
}

func (d *memoryDevice) CreateSampler(desc SamplerDescriptor) (Sampler, error) {
	return &memorySampler{
		memoryResource: d.resource(desc.Label),
		desc:           desc.WithDefaults(),
	}, nil
}

func (d *memoryDevice) CreateBindGroupLayout(label string, entries []reflection.BindingDescriptor) (BindGroupLayout, error) {
	for i, e := range entries {
		if e.Slot != i {
			return nil, fmt.Errorf("bind group layout %q: entry %d has slot %d", label, i, e.Slot)
		}
	}
	return &memoryBindGroupLayout{
		memoryResource: d.resource(label),
		entries:        append([]reflection.BindingDescriptor(nil), entries...),
	}, nil
}

func (d *memoryDevice) CreateBindGroup(label string, bgl BindGroupLayout, entries []BindGroupEntry) (BindGroup, error) {
	l, ok := bgl.(*memoryBindGroupLayout)
	if !ok || l.dev != d {
		return nil, ErrForeignHandle
	}
	ordered, err := ValidateBindGroup(l.entries, entries)
	if err != nil {
		return nil, fmt.Errorf("bind group %q: %w", label, err)
	}
	for _, e := range ordered {
		if e.Buffer != nil {
			if _, err := d.buffer(e.Buffer); err != nil {
				return nil, fmt.Errorf("bind group %q slot %d: %w", label, e.Slot, err)
			}
		}
	}
	return &memoryBindGroup{
		memoryResource: d.resource(label),
		layout:         l,
		entries:        ordered,
	}, nil
}

func (d *memoryDevice) Release() {}

func (d *memoryDevice) ReadBuffer(buf Buffer) ([]byte, error) {
	b, err := d.buffer(buf)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b.data...), nil
}

func (d *memoryDevice) ReadTexture(tex Texture) ([]byte, error) {
	t, ok := tex.(*memoryTexture)
	if !ok || t.dev != d {
		return nil, ErrForeignHandle
	}
	if t.released {
		return nil, fmt.Errorf("%w: texture %q", ErrReleased, t.label)
	}
	return append([]byte(nil), t.pixels...), nil
}

func (d *memoryDevice) Live() int {
	return int(d.live.Load())
}

func (d *memoryDevice) BytesWritten() uint64 {
	return d.written.Load()
}

func (d *memoryDevice) buffer(buf Buffer) (*memoryBuffer, error) {
	b, ok := buf.(*memoryBuffer)
	if !ok || b.dev != d {
		return nil, ErrForeignHandle
	}
	if b.released {
		return nil, fmt.Errorf("%w: buffer %q", ErrReleased, b.label)
	}
	return b, nil
}
