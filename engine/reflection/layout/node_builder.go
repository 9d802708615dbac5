package layout

import (
	"github.com/Carmen-Shannon/oxy-bind/common"
)

// Scalar creates a scalar node.
//
// Parameters:
//   - t: the scalar type
//
// Returns:
//   - *Node: the scalar node
func Scalar(t ScalarType) *Node {
	s := t.Size()
	return &Node{
		name:   t.String(),
		kind:   KindScalar,
		scalar: t,
		size:   [numCategories]int{CategoryUniform: s},
		align:  s,
	}
}

// Vector creates an n-component vector node. Three-component vectors align like four.
//
// Parameters:
//   - t: the component scalar type
//   - n: the component count, 2 to 4
//
// Returns:
//   - *Node: the vector node
func Vector(t ScalarType, n int) *Node {
	s := t.Size()
	align := 2 * s
	if n > 2 {
		align = 4 * s
	}
	return &Node{
		name:   vectorName(t, n),
		kind:   KindVector,
		scalar: t,
		size:   [numCategories]int{CategoryUniform: n * s},
		align:  align,
		count:  n,
	}
}

// Matrix creates a row-major matrix node of rows vectors with cols components each. Every row
// is padded to the row vector's alignment, so a 3x3 float matrix spans 48 bytes with rows at
// byte offsets 0, 16 and 32.
//
// Parameters:
//   - t: the component scalar type
//   - rows: the number of rows
//   - cols: the number of components per row
//
// Returns:
//   - *Node: the matrix node
func Matrix(t ScalarType, rows, cols int) *Node {
	row := Vector(t, cols)
	rowStride := common.AlignUp(row.align, row.size[CategoryUniform])
	return &Node{
		name:    matrixName(t, rows, cols),
		kind:    KindMatrix,
		scalar:  t,
		size:    [numCategories]int{CategoryUniform: rows * rowStride},
		stride:  [numCategories]int{CategoryUniform: rowStride},
		align:   row.align,
		element: row,
		count:   rows,
	}
}

// Struct creates a struct node, placing each field at the next offset in every category.
// Uniform offsets follow the member alignment rules; slot and set offsets are prefix sums.
//
// Parameters:
//   - name: the struct's type name
//   - fields: the ordered fields
//
// Returns:
//   - *Node: the struct node
func Struct(name string, fields ...Field) *Node {
	return newStruct(name, 0, fields)
}

func newStruct(name string, setBase int, fields []Field) *Node {
	n := &Node{name: name, kind: KindStruct, align: 1, reservedSets: setBase}
	var uniform, slot int
	set := setBase
	for _, f := range fields {
		c := f.Node
		uniform = common.AlignUp(c.align, uniform)
		n.align = max(n.align, c.align)
		f.offset = [numCategories]int{CategoryUniform: uniform, CategorySlot: slot, CategorySet: set}
		n.fields = append(n.fields, f)

		uniform += c.size[CategoryUniform]
		slot += c.size[CategorySlot]
		set += c.size[CategorySet]
	}
	n.size = [numCategories]int{
		CategoryUniform: common.AlignUp(n.align, uniform),
		CategorySlot:    slot,
		CategorySet:     set,
	}
	return n
}

// Array creates a fixed-size array node, or a runtime-sized one when count is zero.
// Runtime-sized arrays consume nothing in their parent.
//
// Parameters:
//   - element: the element type
//   - count: the element count, 0 for runtime-sized
//
// Returns:
//   - *Node: the array node
func Array(element *Node, count int) *Node {
	n := &Node{
		name:    arrayName(element, count),
		kind:    KindArray,
		element: element,
		count:   count,
		align:   max(element.align, 1),
		stride: [numCategories]int{
			CategoryUniform: common.AlignUp(element.align, element.size[CategoryUniform]),
			CategorySlot:    element.size[CategorySlot],
			CategorySet:     element.size[CategorySet],
		},
	}
	for cat := range numCategories {
		n.size[cat] = count * n.stride[cat]
	}
	return n
}

// Texture creates a sampled texture resource of the given shape.
//
// Parameters:
//   - shape: one of the texture shapes
//
// Returns:
//   - *Node: the texture node
func Texture(shape Shape) *Node {
	return &Node{
		name:  shape.String(),
		kind:  KindResource,
		size:  [numCategories]int{CategorySlot: 1},
		align: 1,
		shape: shape,
	}
}

// Sampler creates a sampler node.
//
// Returns:
//   - *Node: the sampler node
func Sampler() *Node {
	return &Node{
		name:  "sampler",
		kind:  KindSampler,
		size:  [numCategories]int{CategorySlot: 1},
		align: 1,
	}
}

// StructuredBuffer creates a read-only, runtime-sized buffer of element values.
//
// Parameters:
//   - element: the element type
//
// Returns:
//   - *Node: the buffer resource node
func StructuredBuffer(element *Node) *Node {
	return bufferResource("StructuredBuffer", ShapeStructuredBuffer, AccessRead, element)
}

// RWStructuredBuffer creates a read-write, runtime-sized buffer of element values.
//
// Parameters:
//   - element: the element type
//
// Returns:
//   - *Node: the buffer resource node
func RWStructuredBuffer(element *Node) *Node {
	return bufferResource("RWStructuredBuffer", ShapeStructuredBuffer, AccessReadWrite, element)
}

// ByteAddressBuffer creates an untyped buffer addressed in 32-bit words.
//
// Parameters:
//   - access: read-only or read-write
//
// Returns:
//   - *Node: the buffer resource node
func ByteAddressBuffer(access Access) *Node {
	return bufferResource("ByteAddressBuffer", ShapeByteAddressBuffer, access, Scalar(ScalarUint32))
}

func bufferResource(wrapper string, shape Shape, access Access, element *Node) *Node {
	return &Node{
		name:    wrapper + "<" + element.name + ">",
		kind:    KindResource,
		size:    [numCategories]int{CategorySlot: 1},
		stride:  [numCategories]int{CategoryUniform: common.AlignUp(element.align, element.size[CategoryUniform])},
		align:   1,
		element: element,
		shape:   shape,
		access:  access,
	}
}

// ConstantBuffer wraps element in its own uniform buffer. The buffer occupies a slot only when
// the element has uniform data; the element's own resources follow it in the same set.
//
// Parameters:
//   - element: the wrapped type
//
// Returns:
//   - *Node: the constant buffer node
func ConstantBuffer(element *Node) *Node {
	n := newSingleton(KindConstantBuffer, element, uniformSlot(element), 0)
	n.name = "ConstantBuffer<" + element.name + ">"
	return n
}

// ParameterBlock wraps element in a descriptor set of its own. Its uniform data, if any, lives
// in a buffer at slot 0 of that set, and it consumes no slots in the parent's set.
//
// Parameters:
//   - element: the wrapped type
//
// Returns:
//   - *Node: the parameter block node
func ParameterBlock(element *Node) *Node {
	n := newSingleton(KindParameterBlock, element, uniformSlot(element), 1)
	n.name = "ParameterBlock<" + element.name + ">"
	n.size[CategorySlot] = 0
	return n
}

// TextureBuffer wraps element in a texel buffer binding.
//
// Parameters:
//   - element: the wrapped type
//
// Returns:
//   - *Node: the texture buffer node
func TextureBuffer(element *Node) *Node {
	n := newSingleton(KindTextureBuffer, element, 1, 0)
	n.name = "TextureBuffer<" + element.name + ">"
	return n
}

// ShaderStorageBuffer wraps element in a read-write storage buffer block.
//
// Parameters:
//   - element: the wrapped type
//
// Returns:
//   - *Node: the storage buffer node
func ShaderStorageBuffer(element *Node) *Node {
	n := newSingleton(KindShaderStorageBuffer, element, 1, 0)
	n.name = "ShaderStorageBuffer<" + element.name + ">"
	return n
}

func uniformSlot(element *Node) int {
	if element.size[CategoryUniform] > 0 {
		return 1
	}
	return 0
}

func newSingleton(kind Kind, element *Node, containerSlot, containerSet int) *Node {
	return &Node{
		kind:          kind,
		element:       element,
		align:         1,
		container:     [numCategories]int{CategorySlot: containerSlot, CategorySet: containerSet},
		elementOffset: [numCategories]int{CategorySlot: containerSlot, CategorySet: containerSet},
		size: [numCategories]int{
			CategorySlot: containerSlot + element.size[CategorySlot],
			CategorySet:  containerSet + element.size[CategorySet],
		},
		stride: [numCategories]int{
			CategoryUniform: common.AlignUp(element.align, element.size[CategoryUniform]),
		},
	}
}

// Global builds the root scope of a program from its top-level parameters. Loose uniform
// parameters are gathered into an implicit constant buffer at set 0, slot 0. When the scope
// has any loose bindings, set 0 is reserved for them and parameter blocks start at set 1.
//
// Parameters:
//   - fields: the program's top-level parameters in declaration order
//
// Returns:
//   - *Node: the root node to hand to a cursor or the binding-layout builder
func Global(fields ...Field) *Node {
	scope := newStruct("global", 0, fields)
	if scope.size[CategoryUniform] > 0 || scope.size[CategorySlot] > 0 {
		scope = newStruct("global", 1, fields)
	}
	if scope.size[CategoryUniform] == 0 {
		return scope
	}
	root := ConstantBuffer(scope)
	root.name = "global"
	root.reservedSets = scope.reservedSets
	return root
}
