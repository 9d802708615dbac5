package reflection

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// BindingKind is the resource type a descriptor slot holds.
type BindingKind int

const (
	BindingUniformBuffer BindingKind = iota
	BindingStorageBuffer
	BindingReadOnlyStorageBuffer
	BindingTexture
	BindingSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingUniformBuffer:
		return "uniform-buffer"
	case BindingStorageBuffer:
		return "storage-buffer"
	case BindingReadOnlyStorageBuffer:
		return "read-only-storage-buffer"
	case BindingTexture:
		return "texture"
	case BindingSampler:
		return "sampler"
	default:
		return fmt.Sprintf("binding-kind(%d)", int(k))
	}
}

// IsBuffer reports whether the kind is backed by a buffer.
func (k BindingKind) IsBuffer() bool {
	return k == BindingUniformBuffer || k == BindingStorageBuffer || k == BindingReadOnlyStorageBuffer
}

// ShaderStage is a bit set of shader stages a binding is visible to.
type ShaderStage uint32

const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
	StageCompute

	StageAll = StageVertex | StageFragment | StageCompute
)

// BindingDescriptor describes one slot of a descriptor set.
type BindingDescriptor struct {
	// Slot is the binding index within the set.
	Slot int `msgpack:"slot"`
	// Kind is the resource type the slot holds.
	Kind BindingKind `msgpack:"kind"`
	// Capacity is the byte size a buffer slot must be created with. Storage buffers hold one
	// element and are grown by their writers. Zero for textures and samplers.
	Capacity int `msgpack:"capacity"`
	// ViewDimension is the view dimension of a texture slot.
	ViewDimension layout.ViewDimension `msgpack:"view_dimension"`
	// Visibility is the set of stages the slot is visible to.
	Visibility ShaderStage `msgpack:"visibility"`
	// Name is the path of the layout node that produced the slot.
	Name string `msgpack:"name"`
}

// BindingTable lists, per descriptor set index, the slots the set exposes in slot order.
type BindingTable map[int][]BindingDescriptor

// Sets returns the table's set indices in ascending order.
//
// Returns:
//   - []int: the sorted set indices
func (t BindingTable) Sets() []int {
	sets := make([]int, 0, len(t))
	for s := range t {
		sets = append(sets, s)
	}
	slices.Sort(sets)
	return sets
}

// Lookup returns the descriptor at (set, slot).
//
// Parameters:
//   - set: the descriptor set index
//   - slot: the slot index within the set
//
// Returns:
//   - BindingDescriptor: the descriptor
//   - bool: false when the table has no such slot
func (t BindingTable) Lookup(set, slot int) (BindingDescriptor, bool) {
	descs := t[set]
	if slot < 0 || slot >= len(descs) {
		return BindingDescriptor{}, false
	}
	return descs[slot], true
}

// BuildOption configures BuildBindingLayout.
type BuildOption func(*layoutBuilder)

// WithVisibility sets the shader stages every emitted descriptor is visible to.
// Descriptors are visible to all stages by default.
//
// Parameters:
//   - stages: the stage mask
//
// Returns:
//   - BuildOption: a function that sets the visibility
func WithVisibility(stages ShaderStage) BuildOption {
	return func(b *layoutBuilder) {
		b.visibility = stages
	}
}

// VisibilityOf returns the visibility BuildBindingLayout would stamp on descriptors when given
// options.
//
// Parameters:
//   - options: build options
//
// Returns:
//   - ShaderStage: the resulting stage mask
func VisibilityOf(options ...BuildOption) ShaderStage {
	b := &layoutBuilder{visibility: StageAll}
	for _, opt := range options {
		opt(b)
	}
	return b.visibility
}

type layoutBuilder struct {
	table      BindingTable
	nextSet    int
	visibility ShaderStage
}

// BuildBindingLayout walks a layout tree and lists the descriptors every set must expose.
// Slots are assigned in arrival order within a set and sets in depth-first order of the
// parameter blocks that open them, after any sets the root reserves. This numbering matches the
// coordinates a Cursor derives for the same nodes.
//
// Parameters:
//   - root: the program's root layout node
//   - options: build options
//
// Returns:
//   - BindingTable: the per-set descriptor lists
//   - error: ErrUnsupportedLayout for texture buffers, unbounded binding arrays and other
//     bindings the backend cannot express
func BuildBindingLayout(root *layout.Node, options ...BuildOption) (BindingTable, error) {
	b := &layoutBuilder{
		table:      make(BindingTable),
		nextSet:    root.ReservedSets(),
		visibility: StageAll,
	}
	for _, opt := range options {
		opt(b)
	}
	if err := b.visit(root, 0, ""); err != nil {
		return nil, err
	}
	return b.table, nil
}

func (b *layoutBuilder) visit(n *layout.Node, set int, path string) error {
	switch n.Kind() {
	case layout.KindScalar, layout.KindVector, layout.KindMatrix:
		return nil

	case layout.KindStruct:
		for _, f := range n.Fields() {
			if err := b.visit(f.Node, set, joinPath(path, f.Name)); err != nil {
				return err
			}
		}
		return nil

	case layout.KindArray:
		elem := n.Element()
		if elem.Size(layout.CategorySlot) == 0 && elem.Size(layout.CategorySet) == 0 {
			return nil
		}
		if n.Count() == 0 {
			return fmt.Errorf("%w: %q is an unbounded array of bindings", ErrUnsupportedLayout, path)
		}
		for i := range n.Count() {
			if err := b.visit(elem, set, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		return nil

	case layout.KindSampler:
		b.add(set, BindingDescriptor{Kind: BindingSampler, Name: path})
		return nil

	case layout.KindResource:
		switch n.BindingType() {
		case layout.BindingTypeTexture:
			b.add(set, BindingDescriptor{Kind: BindingTexture, ViewDimension: n.Shape().ViewDimension(), Name: path})
		case layout.BindingTypeRawBuffer:
			b.add(set, BindingDescriptor{Kind: BindingReadOnlyStorageBuffer, Capacity: n.Stride(layout.CategoryUniform), Name: path})
		case layout.BindingTypeMutableRawBuffer:
			b.add(set, BindingDescriptor{Kind: BindingStorageBuffer, Capacity: n.Stride(layout.CategoryUniform), Name: path})
		default:
			return fmt.Errorf("%w: %q has resource shape %s", ErrUnsupportedLayout, path, n.Shape())
		}
		return nil

	case layout.KindConstantBuffer:
		if n.ContainerSize(layout.CategorySlot) > 0 {
			b.add(set, BindingDescriptor{Kind: BindingUniformBuffer, Capacity: n.Element().Size(layout.CategoryUniform), Name: path})
		}
		return b.visit(n.Element(), set, joinPath(path, "$"))

	case layout.KindParameterBlock:
		own := b.nextSet
		b.nextSet++
		if _, used := b.table[own]; used {
			return fmt.Errorf("%w: parameter block %q opens set %d, which already holds loose bindings", ErrUnsupportedLayout, path, own)
		}
		b.table[own] = []BindingDescriptor{}
		if n.ContainerSize(layout.CategorySlot) > 0 {
			b.add(own, BindingDescriptor{Kind: BindingUniformBuffer, Capacity: n.Element().Size(layout.CategoryUniform), Name: path})
		}
		return b.visit(n.Element(), own, joinPath(path, "$"))

	case layout.KindShaderStorageBuffer:
		b.add(set, BindingDescriptor{Kind: BindingStorageBuffer, Capacity: n.Stride(layout.CategoryUniform), Name: path})
		return nil

	case layout.KindTextureBuffer:
		return fmt.Errorf("%w: %q is a texture buffer", ErrUnsupportedLayout, path)

	default:
		return fmt.Errorf("%w: %s at %q", ErrUnsupportedKind, n.Kind(), path)
	}
}

func (b *layoutBuilder) add(set int, d BindingDescriptor) {
	d.Slot = len(b.table[set])
	d.Visibility = b.visibility
	b.table[set] = append(b.table[set], d)
}
