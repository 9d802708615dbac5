package backend

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

var (
	// ErrOutOfBounds is returned when a write does not fit inside its destination.
	ErrOutOfBounds = errors.New("write out of bounds")
	// ErrReleased is returned when a released handle is used.
	ErrReleased = errors.New("handle already released")
	// ErrForeignHandle is returned when a handle created by a different device is passed in.
	ErrForeignHandle = errors.New("handle belongs to a different device")
	// ErrBindGroupMismatch is returned when bind group entries do not line up with their layout.
	ErrBindGroupMismatch = errors.New("bind group entries do not match layout")
)

// BufferUsage is a bit set describing how a buffer may be used.
type BufferUsage uint32

const (
	BufferUsageUniform BufferUsage = 1 << iota
	BufferUsageStorage
	BufferUsageCopySrc
	BufferUsageCopyDst
)

// UsageFor returns the usage a buffer backing a descriptor of the given kind must carry.
//
// Parameters:
//   - kind: the descriptor kind
//
// Returns:
//   - BufferUsage: the usage flags, or 0 for non-buffer kinds
func UsageFor(kind reflection.BindingKind) BufferUsage {
	switch kind {
	case reflection.BindingUniformBuffer:
		return BufferUsageUniform | BufferUsageCopyDst
	case reflection.BindingStorageBuffer, reflection.BindingReadOnlyStorageBuffer:
		return BufferUsageStorage | BufferUsageCopyDst
	default:
		return 0
	}
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// Extent is the size of a texture in texels and array layers.
type Extent struct {
	Width  uint32
	Height uint32
	Layers uint32
}

// TextureDescriptor describes an RGBA8 texture to create. Dimension picks the storage shape:
// 1D and 3D textures are created as such, everything else as a layered 2D texture. For 3D
// textures Extent.Layers is the depth.
type TextureDescriptor struct {
	Label     string
	Extent    Extent
	Dimension layout.ViewDimension
}

// AddressMode controls how texture coordinates outside [0, 1] are resolved. The zero value
// selects the default.
type AddressMode int

const (
	AddressModeUndefined AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
	AddressModeClampToEdge
)

// FilterMode selects texel filtering. The zero value selects the default.
type FilterMode int

const (
	FilterModeUndefined FilterMode = iota
	FilterModeNearest
	FilterModeLinear
)

// SamplerDescriptor describes a sampler to create. Zero fields fall back to repeat addressing,
// linear filtering, a max LOD clamp of 32 and anisotropy 1.
type SamplerDescriptor struct {
	Label         string
	AddressModeU  AddressMode
	AddressModeV  AddressMode
	AddressModeW  AddressMode
	MagFilter     FilterMode
	MinFilter     FilterMode
	MipmapFilter  FilterMode
	LodMinClamp   float32
	LodMaxClamp   float32
	MaxAnisotropy uint16
}

// WithDefaults returns a copy of d with every zero field replaced by its default.
//
// Returns:
//   - SamplerDescriptor: the completed descriptor
func (d SamplerDescriptor) WithDefaults() SamplerDescriptor {
	d.AddressModeU = common.Coalesce(d.AddressModeU, AddressModeRepeat)
	d.AddressModeV = common.Coalesce(d.AddressModeV, AddressModeRepeat)
	d.AddressModeW = common.Coalesce(d.AddressModeW, AddressModeRepeat)
	d.MagFilter = common.Coalesce(d.MagFilter, FilterModeLinear)
	d.MinFilter = common.Coalesce(d.MinFilter, FilterModeLinear)
	d.MipmapFilter = common.Coalesce(d.MipmapFilter, FilterModeLinear)
	d.LodMaxClamp = common.Coalesce(d.LodMaxClamp, 32.0)
	d.MaxAnisotropy = common.Coalesce(d.MaxAnisotropy, 1)
	return d
}

// Buffer is a device buffer.
type Buffer interface {
	Label() string
	Size() uint64
	Usage() BufferUsage
	Release()
}

// Texture is a device RGBA8 texture.
type Texture interface {
	Label() string
	Extent() Extent
	Release()
}

// TextureView is a view of a texture with a fixed view dimension.
type TextureView interface {
	Texture() Texture
	Dimension() layout.ViewDimension
	Release()
}

// Sampler is a device sampler.
type Sampler interface {
	Label() string
	Release()
}

// BindGroupLayout is the device object for one descriptor set's layout.
type BindGroupLayout interface {
	Label() string
	Entries() []reflection.BindingDescriptor
	Release()
}

// BindGroupEntry is one resource bound at a slot. Exactly one of Buffer, TextureView and
// Sampler is set.
type BindGroupEntry struct {
	Slot        int
	Buffer      Buffer
	TextureView TextureView
	Sampler     Sampler
}

// BindGroup is the device object binding resources to one descriptor set.
type BindGroup interface {
	Label() string
	Layout() BindGroupLayout
	Entries() []BindGroupEntry
	Release()
}

// Device creates resources and uploads data to them. Implementations are not required to be
// safe for concurrent use; callers serialize access per frame.
type Device interface {
	// CreateBuffer creates a zero-filled buffer.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: an error if the buffer could not be created
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// WriteBuffer copies data into buf at the given byte offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the destination byte offset
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: ErrOutOfBounds if the write does not fit, ErrReleased for a released buffer
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateTexture creates an RGBA8 texture.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - Texture: the new texture
	//   - error: an error if the texture could not be created
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture uploads every layer of tex from staged pixels whose extent must match.
	//
	// Parameters:
	//   - tex: the destination texture
	//   - data: the staged pixels
	//
	// Returns:
	//   - error: ErrOutOfBounds on an extent mismatch, ErrReleased for a released texture
	WriteTexture(tex Texture, data common.TextureStagingData) error

	// CreateTextureView creates a view of tex.
	//
	// Parameters:
	//   - tex: the viewed texture
	//   - dim: the view dimension
	//
	// Returns:
	//   - TextureView: the new view
	//   - error: an error if the view could not be created
	CreateTextureView(tex Texture, dim layout.ViewDimension) (TextureView, error)

	// CreateSampler creates a sampler. Zero descriptor fields take their defaults.
	//
	// Parameters:
	//   - desc: the sampler descriptor
	//
	// Returns:
	//   - Sampler: the new sampler
	//   - error: an error if the sampler could not be created
	CreateSampler(desc SamplerDescriptor) (Sampler, error)

	// CreateBindGroupLayout creates the layout object for one descriptor set.
	//
	// Parameters:
	//   - label: a debug label
	//   - entries: the set's descriptors in slot order
	//
	// Returns:
	//   - BindGroupLayout: the new layout
	//   - error: an error if the layout could not be created
	CreateBindGroupLayout(label string, entries []reflection.BindingDescriptor) (BindGroupLayout, error)

	// CreateBindGroup binds resources to a layout. Entries are matched to the layout by slot.
	//
	// Parameters:
	//   - label: a debug label
	//   - bgl: the layout the group conforms to
	//   - entries: one entry per layout descriptor
	//
	// Returns:
	//   - BindGroup: the new bind group
	//   - error: ErrBindGroupMismatch if an entry is missing or of the wrong resource type
	CreateBindGroup(label string, bgl BindGroupLayout, entries []BindGroupEntry) (BindGroup, error)

	// Release releases the device. Resources created by it must not be used afterwards.
	Release()
}
