// Package layout models the reflected shader parameter layout: a finite, immutable tree of
// typed nodes that report per-category sizes, strides and local field offsets.
package layout

// Node is one type in a reflected parameter layout. Nodes are immutable once constructed and
// may be shared between several parents.
type Node struct {
	name   string
	kind   Kind
	scalar ScalarType
	size   [numCategories]int
	stride [numCategories]int
	align  int

	fields  []Field
	element *Node
	count   int

	// container holds the sizes consumed by a singleton's own binding, elementOffset the
	// offsets of its element relative to the singleton.
	container     [numCategories]int
	elementOffset [numCategories]int

	shape  Shape
	access Access

	reservedSets int
}

// Field is a named child of a struct node together with its local offsets.
type Field struct {
	Name   string
	Node   *Node
	offset [numCategories]int
}

// NewField pairs a name with a node. Offsets are assigned when the field is placed in a struct.
//
// Parameters:
//   - name: the field name
//   - n: the field's type
//
// Returns:
//   - Field: an unplaced field
func NewField(name string, n *Node) Field {
	return Field{Name: name, Node: n}
}

// Offset returns the field's offset from the start of its parent, in units of the category.
//
// Parameters:
//   - cat: the category to query
//
// Returns:
//   - int: the local offset
func (f Field) Offset(cat Category) int {
	return f.offset[cat]
}

// Name returns the declared type name, or an empty string for anonymous types.
func (n *Node) Name() string { return n.name }

// Kind returns the node's tag.
func (n *Node) Kind() Kind { return n.kind }

// Scalar returns the element scalar type of a scalar, vector or matrix node.
func (n *Node) Scalar() ScalarType { return n.scalar }

// Size returns how much of the category the node consumes in its parent.
func (n *Node) Size(cat Category) int { return n.size[cat] }

// Stride returns the per-element spacing of an array, matrix (row stride) or buffer resource.
func (n *Node) Stride(cat Category) int { return n.stride[cat] }

// Align returns the uniform byte alignment of the node.
func (n *Node) Align() int { return n.align }

// Fields returns the ordered fields of a struct node.
func (n *Node) Fields() []Field { return n.fields }

// Element returns the element type of an array, matrix, buffer resource or singleton container.
func (n *Node) Element() *Node { return n.element }

// Count returns the element count of an array or the row count of a matrix.
// Zero marks a runtime-sized array.
func (n *Node) Count() int { return n.count }

// Shape returns the resource shape of a KindResource node.
func (n *Node) Shape() Shape { return n.shape }

// Access returns whether a buffer resource is read-only or read-write.
func (n *Node) Access() Access { return n.access }

// ContainerSize returns the sizes consumed by a singleton container's own binding, as opposed
// to what its element consumes. It is zero for every other kind.
//
// Parameters:
//   - cat: the category to query
//
// Returns:
//   - int: the container's own size in that category
func (n *Node) ContainerSize(cat Category) int { return n.container[cat] }

// ElementField returns the synthetic field describing a singleton's element and its offsets
// relative to the singleton.
//
// Returns:
//   - Field: the element field, with a nil Node for non-singleton kinds
func (n *Node) ElementField() Field {
	if !n.kind.IsSingleton() {
		return Field{}
	}
	return Field{Name: "$", Node: n.element, offset: n.elementOffset}
}

// ReservedSets returns how many leading descriptor sets a root scope keeps for its own loose
// bindings before the first parameter block. Only roots built by Global reserve any.
func (n *Node) ReservedSets() int { return n.reservedSets }

// FieldIndex returns the index of the named field, or -1.
//
// Parameters:
//   - name: the field name to look up
//
// Returns:
//   - int: the field index or -1 when absent
func (n *Node) FieldIndex(name string) int {
	for i, f := range n.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// BindingType returns the binding-range type this node contributes on its own. Plain data
// nodes, structs and arrays return BindingTypeNone.
func (n *Node) BindingType() BindingType {
	switch n.kind {
	case KindSampler:
		return BindingTypeSampler
	case KindResource:
		switch {
		case n.shape.IsTexture():
			return BindingTypeTexture
		case n.shape.IsBuffer() && n.access == AccessReadWrite:
			return BindingTypeMutableRawBuffer
		case n.shape.IsBuffer():
			return BindingTypeRawBuffer
		}
	case KindConstantBuffer:
		return BindingTypeConstantBuffer
	case KindParameterBlock:
		return BindingTypeParameterBlock
	case KindTextureBuffer:
		return BindingTypeTextureBuffer
	case KindShaderStorageBuffer:
		return BindingTypeMutableRawBuffer
	}
	return BindingTypeNone
}

// BindingRange is one reflected binding range: a binding type repeated Count times.
// A Count of zero marks an unbounded range.
type BindingRange struct {
	Type  BindingType
	Count int
}

// BindingRanges flattens the bindings reachable from n in declaration order. An array whose
// element has exactly one range multiplies that range's count; arrays of multi-range elements
// repeat the element's ranges once per element.
//
// Returns:
//   - []BindingRange: the ranges in declaration order
func (n *Node) BindingRanges() []BindingRange {
	switch n.kind {
	case KindStruct:
		var out []BindingRange
		for _, f := range n.fields {
			out = append(out, f.Node.BindingRanges()...)
		}
		return out
	case KindArray:
		inner := n.element.BindingRanges()
		if len(inner) == 1 {
			inner[0].Count *= n.count
			return inner
		}
		out := make([]BindingRange, 0, len(inner)*n.count)
		for range n.count {
			out = append(out, inner...)
		}
		return out
	case KindConstantBuffer, KindParameterBlock, KindTextureBuffer, KindShaderStorageBuffer:
		out := []BindingRange{{Type: n.BindingType(), Count: 1}}
		if n.kind == KindShaderStorageBuffer || n.kind == KindTextureBuffer {
			return out
		}
		return append(out, n.element.BindingRanges()...)
	default:
		if bt := n.BindingType(); bt != BindingTypeNone {
			return []BindingRange{{Type: bt, Count: 1}}
		}
		return nil
	}
}
