package wgpu_backend

import (
	"fmt"
	"runtime"
	"sync"

	"fortio.org/safecast"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
)

// device is a headless backend.Device on top of a WebGPU adapter.
type device struct {
	mu       *sync.Mutex
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	label                string
	forceFallbackAdapter bool
	maxBindGroups        uint32
}

var _ backend.Device = &device{}

type wgpuBuffer struct {
	buf   *wgpu.Buffer
	label string
	size  uint64
	usage backend.BufferUsage
}

func (b *wgpuBuffer) Label() string              { return b.label }
func (b *wgpuBuffer) Size() uint64               { return b.size }
func (b *wgpuBuffer) Usage() backend.BufferUsage { return b.usage }
func (b *wgpuBuffer) Release()                   { b.buf.Release() }

type wgpuTexture struct {
	tex    *wgpu.Texture
	label  string
	extent backend.Extent
}

func (t *wgpuTexture) Label() string          { return t.label }
func (t *wgpuTexture) Extent() backend.Extent { return t.extent }
func (t *wgpuTexture) Release()               { t.tex.Release() }

type wgpuTextureView struct {
	view      *wgpu.TextureView
	texture   *wgpuTexture
	dimension layout.ViewDimension
}

func (v *wgpuTextureView) Texture() backend.Texture        { return v.texture }
func (v *wgpuTextureView) Dimension() layout.ViewDimension { return v.dimension }
func (v *wgpuTextureView) Release()                        { v.view.Release() }

type wgpuSampler struct {
	samp  *wgpu.Sampler
	label string
}

func (s *wgpuSampler) Label() string { return s.label }
func (s *wgpuSampler) Release()      { s.samp.Release() }

type wgpuBindGroupLayout struct {
	bgl     *wgpu.BindGroupLayout
	label   string
	entries []reflection.BindingDescriptor
}

func (l *wgpuBindGroupLayout) Label() string                           { return l.label }
func (l *wgpuBindGroupLayout) Entries() []reflection.BindingDescriptor { return l.entries }
func (l *wgpuBindGroupLayout) Release()                                { l.bgl.Release() }

type wgpuBindGroup struct {
	bg      *wgpu.BindGroup
	label   string
	layout  *wgpuBindGroupLayout
	entries []backend.BindGroupEntry
}

func (g *wgpuBindGroup) Label() string                     { return g.label }
func (g *wgpuBindGroup) Layout() backend.BindGroupLayout   { return g.layout }
func (g *wgpuBindGroup) Entries() []backend.BindGroupEntry { return g.entries }
func (g *wgpuBindGroup) Release()                          { g.bg.Release() }

// NewDevice requests an adapter and a device with no surface attached. The device is only
// good for resource creation and uploads; nothing is ever presented.
//
// Parameters:
//   - options: a variadic list of options to configure the device
//
// Returns:
//   - backend.Device: the new device
//   - error: an error if no adapter or device could be obtained
func NewDevice(options ...DeviceOption) (backend.Device, error) {
	runtime.LockOSThread()
	d := &device{
		mu:            &sync.Mutex{},
		label:         "oxy-bind Device",
		maxBindGroups: 4,
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
	})
	if err != nil {
		d.instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	d.adapter = a

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = d.maxBindGroups

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		d.adapter.Release()
		d.instance.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()
	return d, nil
}

func (d *device) CreateBuffer(desc backend.BufferDescriptor) (backend.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: bufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", desc.Label, err)
	}
	return &wgpuBuffer{buf: buf, label: desc.Label, size: desc.Size, usage: desc.Usage}, nil
}

func (d *device) WriteBuffer(buf backend.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*wgpuBuffer)
	if !ok {
		return backend.ErrForeignHandle
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%w: buffer %q: %d bytes at %d past its size of %d", backend.ErrOutOfBounds, b.label, len(data), offset, b.size)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

func (d *device) CreateTexture(desc backend.TextureDescriptor) (backend.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: textureDimension(desc.Dimension),
		Size: wgpu.Extent3D{
			Width:              desc.Extent.Width,
			Height:             desc.Extent.Height,
			DepthOrArrayLayers: max(desc.Extent.Layers, 1),
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}
	return &wgpuTexture{tex: tex, label: desc.Label, extent: desc.Extent}, nil
}

func (d *device) WriteTexture(tex backend.Texture, data common.TextureStagingData) error {
	t, ok := tex.(*wgpuTexture)
	if !ok {
		return backend.ErrForeignHandle
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Width != t.extent.Width || data.Height != t.extent.Height || data.LayerCount() != max(t.extent.Layers, 1) {
		return fmt.Errorf("%w: texture %q extent differs from the upload", backend.ErrOutOfBounds, t.label)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: data.LayerCount(),
		},
	)
	return nil
}

func (d *device) CreateTextureView(tex backend.Texture, dim layout.ViewDimension) (backend.TextureView, error) {
	t, ok := tex.(*wgpuTexture)
	if !ok {
		return nil, backend.ErrForeignHandle
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var desc *wgpu.TextureViewDescriptor
	if dim != layout.ViewDimension2D && dim != layout.ViewDimension3D && dim != layout.ViewDimension1D {
		desc = &wgpu.TextureViewDescriptor{
			Label:           t.label + " View",
			Format:          wgpu.TextureFormatRGBA8UnormSrgb,
			Dimension:       viewDimension(dim),
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: max(t.extent.Layers, 1),
			Aspect:          wgpu.TextureAspectAll,
		}
	}
	view, err := t.tex.CreateView(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s view of %q: %w", dim, t.label, err)
	}
	return &wgpuTextureView{view: view, texture: t, dimension: dim}, nil
}

func (d *device) CreateSampler(desc backend.SamplerDescriptor) (backend.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	desc = desc.WithDefaults()
	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  addressMode(desc.AddressModeU),
		AddressModeV:  addressMode(desc.AddressModeV),
		AddressModeW:  addressMode(desc.AddressModeW),
		MagFilter:     filterMode(desc.MagFilter),
		MinFilter:     filterMode(desc.MinFilter),
		MipmapFilter:  mipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   desc.LodMaxClamp,
		MaxAnisotropy: desc.MaxAnisotropy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", desc.Label, err)
	}
	return &wgpuSampler{samp: samp, label: desc.Label}, nil
}

func (d *device) CreateBindGroupLayout(label string, entries []reflection.BindingDescriptor) (backend.BindGroupLayout, error) {
	layoutEntries := make([]wgpu.BindGroupLayoutEntry, len(entries))
	for i, e := range entries {
		entry, err := layoutEntry(e)
		if err != nil {
			return nil, fmt.Errorf("bind group layout %q: %w", label, err)
		}
		layoutEntries[i] = entry
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	bgl, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: layoutEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %w", label, err)
	}
	return &wgpuBindGroupLayout{
		bgl:     bgl,
		label:   label,
		entries: append([]reflection.BindingDescriptor(nil), entries...),
	}, nil
}

func (d *device) CreateBindGroup(label string, bgl backend.BindGroupLayout, entries []backend.BindGroupEntry) (backend.BindGroup, error) {
	l, ok := bgl.(*wgpuBindGroupLayout)
	if !ok {
		return nil, backend.ErrForeignHandle
	}
	ordered, err := backend.ValidateBindGroup(l.entries, entries)
	if err != nil {
		return nil, fmt.Errorf("bind group %q: %w", label, err)
	}

	groupEntries := make([]wgpu.BindGroupEntry, len(ordered))
	for i, e := range ordered {
		binding, err := safecast.Conv[uint32](e.Slot)
		if err != nil {
			return nil, fmt.Errorf("bind group %q: slot %d: %w", label, e.Slot, err)
		}
		switch {
		case e.Buffer != nil:
			buf, ok := e.Buffer.(*wgpuBuffer)
			if !ok {
				return nil, backend.ErrForeignHandle
			}
			groupEntries[i] = wgpu.BindGroupEntry{
				Binding: binding,
				Buffer:  buf.buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		case e.TextureView != nil:
			view, ok := e.TextureView.(*wgpuTextureView)
			if !ok {
				return nil, backend.ErrForeignHandle
			}
			groupEntries[i] = wgpu.BindGroupEntry{
				Binding:     binding,
				TextureView: view.view,
			}
		default:
			samp, ok := e.Sampler.(*wgpuSampler)
			if !ok {
				return nil, backend.ErrForeignHandle
			}
			groupEntries[i] = wgpu.BindGroupEntry{
				Binding: binding,
				Sampler: samp.samp,
			}
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  l.bgl,
		Entries: groupEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", label, err)
	}
	return &wgpuBindGroup{bg: bg, label: label, layout: l, entries: ordered}, nil
}

func (d *device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
