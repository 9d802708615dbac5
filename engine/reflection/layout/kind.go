package layout

import "fmt"

// Kind is the tag of a layout node. Every traversal in this module switches over Kind
// exhaustively and ends in an explicit unsupported-kind error.
type Kind int

const (
	KindScalar Kind = iota
	KindVector
	KindMatrix
	KindArray
	KindStruct
	KindSampler
	// KindResource covers textures and structured/byte-address buffers; see Shape.
	KindResource
	KindConstantBuffer
	KindParameterBlock
	KindTextureBuffer
	KindShaderStorageBuffer
)

var kindNames = [...]string{
	KindScalar:              "scalar",
	KindVector:              "vector",
	KindMatrix:              "matrix",
	KindArray:               "array",
	KindStruct:              "struct",
	KindSampler:             "sampler",
	KindResource:            "resource",
	KindConstantBuffer:      "constant-buffer",
	KindParameterBlock:      "parameter-block",
	KindTextureBuffer:       "texture-buffer",
	KindShaderStorageBuffer: "shader-storage-buffer",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsSingleton reports whether the kind is one of the container kinds that wrap a single
// element in its own binding: constant buffers, parameter blocks, texture buffers and
// shader storage buffers.
func (k Kind) IsSingleton() bool {
	switch k {
	case KindConstantBuffer, KindParameterBlock, KindTextureBuffer, KindShaderStorageBuffer:
		return true
	default:
		return false
	}
}

// Category is a binding resource category. Every node reports a size, stride and local
// offset per category.
type Category int

const (
	// CategoryUniform measures bytes of plain data inside a uniform-style buffer.
	CategoryUniform Category = iota
	// CategorySlot measures descriptor slots inside a set. Constant-buffer, shader-resource,
	// unordered-access, sampler and descriptor-table slots are all counted here.
	CategorySlot
	// CategorySet measures whole descriptor sets (register spaces).
	CategorySet

	numCategories = 3
)

func (c Category) String() string {
	switch c {
	case CategoryUniform:
		return "uniform"
	case CategorySlot:
		return "slot"
	case CategorySet:
		return "set"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ScalarType is the element type of scalars, vectors and matrices.
type ScalarType int

const (
	ScalarFloat32 ScalarType = iota
	ScalarInt32
	ScalarUint32
	ScalarFloat16
	ScalarBool
)

// Size returns the byte size of one scalar in a host-shareable buffer.
func (s ScalarType) Size() int {
	if s == ScalarFloat16 {
		return 2
	}
	return 4
}

func (s ScalarType) String() string {
	switch s {
	case ScalarFloat32:
		return "f32"
	case ScalarInt32:
		return "i32"
	case ScalarUint32:
		return "u32"
	case ScalarFloat16:
		return "f16"
	case ScalarBool:
		return "bool"
	default:
		return fmt.Sprintf("scalar(%d)", int(s))
	}
}

// Shape is the resource shape of a KindResource node.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeTexture1D
	ShapeTexture2D
	ShapeTexture2DArray
	ShapeTexture3D
	ShapeTextureCube
	ShapeTextureCubeArray
	ShapeStructuredBuffer
	ShapeByteAddressBuffer
)

var shapeNames = [...]string{
	ShapeNone:              "none",
	ShapeTexture1D:         "texture_1d",
	ShapeTexture2D:         "texture_2d",
	ShapeTexture2DArray:    "texture_2d_array",
	ShapeTexture3D:         "texture_3d",
	ShapeTextureCube:       "texture_cube",
	ShapeTextureCubeArray:  "texture_cube_array",
	ShapeStructuredBuffer:  "structured_buffer",
	ShapeByteAddressBuffer: "byte_address_buffer",
}

func (s Shape) String() string {
	if s >= 0 && int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// IsTexture reports whether the shape is one of the sampled texture shapes.
func (s Shape) IsTexture() bool {
	return s >= ShapeTexture1D && s <= ShapeTextureCubeArray
}

// IsBuffer reports whether the shape is a structured or byte-address buffer.
func (s Shape) IsBuffer() bool {
	return s == ShapeStructuredBuffer || s == ShapeByteAddressBuffer
}

// ViewDimension maps a texture shape to the view dimension a binding must declare.
// Non-texture shapes map to ViewDimensionUndefined.
func (s Shape) ViewDimension() ViewDimension {
	switch s {
	case ShapeTexture1D:
		return ViewDimension1D
	case ShapeTexture2D:
		return ViewDimension2D
	case ShapeTexture2DArray:
		return ViewDimension2DArray
	case ShapeTexture3D:
		return ViewDimension3D
	case ShapeTextureCube:
		return ViewDimensionCube
	case ShapeTextureCubeArray:
		return ViewDimensionCubeArray
	default:
		return ViewDimensionUndefined
	}
}

// ViewDimension is the texture view dimension of a texture binding.
type ViewDimension int

const (
	ViewDimensionUndefined ViewDimension = iota
	ViewDimension1D
	ViewDimension2D
	ViewDimension2DArray
	ViewDimension3D
	ViewDimensionCube
	ViewDimensionCubeArray
)

func (v ViewDimension) String() string {
	switch v {
	case ViewDimension1D:
		return "1d"
	case ViewDimension2D:
		return "2d"
	case ViewDimension2DArray:
		return "2d-array"
	case ViewDimension3D:
		return "3d"
	case ViewDimensionCube:
		return "cube"
	case ViewDimensionCubeArray:
		return "cube-array"
	default:
		return "undefined"
	}
}

// Layers returns the number of array layers a texture of this dimension holds when it is not
// itself arrayed. Cube views need six.
func (v ViewDimension) Layers() uint32 {
	if v == ViewDimensionCube {
		return 6
	}
	return 1
}

// Access describes whether a buffer resource may be written by shaders.
type Access int

const (
	AccessRead Access = iota
	AccessReadWrite
)

// BindingType is the reflected binding-range type of a node.
type BindingType int

const (
	BindingTypeNone BindingType = iota
	BindingTypeSampler
	BindingTypeTexture
	BindingTypeConstantBuffer
	BindingTypeParameterBlock
	BindingTypeTextureBuffer
	BindingTypeRawBuffer
	BindingTypeMutableRawBuffer
)

func (b BindingType) String() string {
	switch b {
	case BindingTypeNone:
		return "none"
	case BindingTypeSampler:
		return "sampler"
	case BindingTypeTexture:
		return "texture"
	case BindingTypeConstantBuffer:
		return "constant-buffer"
	case BindingTypeParameterBlock:
		return "parameter-block"
	case BindingTypeTextureBuffer:
		return "texture-buffer"
	case BindingTypeRawBuffer:
		return "raw-buffer"
	case BindingTypeMutableRawBuffer:
		return "mutable-raw-buffer"
	default:
		return fmt.Sprintf("binding-type(%d)", int(b))
	}
}
