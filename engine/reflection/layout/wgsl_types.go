package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// scalarTypeMap maps WGSL scalar and atomic type names to their scalar type.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var scalarTypeMap = map[string]ScalarType{
	"f32":         ScalarFloat32,
	"i32":         ScalarInt32,
	"u32":         ScalarUint32,
	"f16":         ScalarFloat16,
	"bool":        ScalarBool,
	"atomic<u32>": ScalarUint32,
	"atomic<i32>": ScalarInt32,
}

// shorthandScalarMap maps the WGSL vector/matrix shorthand suffixes (vec3f, mat4x4h) to scalars.
var shorthandScalarMap = map[string]ScalarType{
	"f": ScalarFloat32,
	"i": ScalarInt32,
	"u": ScalarUint32,
	"h": ScalarFloat16,
}

// textureShapeMap maps WGSL sampled texture base names to resource shapes.
var textureShapeMap = map[string]Shape{
	"texture_1d":         ShapeTexture1D,
	"texture_2d":         ShapeTexture2D,
	"texture_2d_array":   ShapeTexture2DArray,
	"texture_3d":         ShapeTexture3D,
	"texture_cube":       ShapeTextureCube,
	"texture_cube_array": ShapeTextureCubeArray,
}

var (
	// vectorRegex matches vecN<T> and the vecNf shorthand forms
	vectorRegex = regexp.MustCompile(`^vec([234])(?:<\s*(\w+)\s*>|([fiuh]))$`)

	// matrixRegex matches matCxR<T> and the matCxRf shorthand forms
	matrixRegex = regexp.MustCompile(`^mat([234])x([234])(?:<\s*(\w+)\s*>|([fh]))$`)
)

func vectorName(t ScalarType, n int) string {
	return fmt.Sprintf("vec%d<%s>", n, t)
}

// matrixName uses the WGSL matCxR spelling: C vectors (our rows) of R components (our cols).
func matrixName(t ScalarType, rows, cols int) string {
	return fmt.Sprintf("mat%dx%d<%s>", rows, cols, t)
}

func arrayName(element *Node, count int) string {
	if count == 0 {
		return "array<" + element.name + ">"
	}
	return fmt.Sprintf("array<%s, %d>", element.name, count)
}

// ParseType resolves a type expression to a layout node. It understands WGSL scalars, vectors,
// matrices, fixed and runtime-sized arrays, sampled textures and samplers, plus the container
// wrappers ConstantBuffer<T>, ParameterBlock<T>, TextureBuffer<T>, ShaderStorageBuffer<T>,
// StructuredBuffer<T>, RWStructuredBuffer<T>, ByteAddressBuffer and RWByteAddressBuffer.
// Any other name is handed to lookup, which resolves user-declared structs.
//
// Parameters:
//   - expr: the type expression, e.g. "vec3f", "array<Light, 4>", "ConstantBuffer<Camera>"
//   - lookup: resolves struct names, may be nil
//
// Returns:
//   - *Node: the resolved node
//   - error: an error if the expression names an unknown type
func ParseType(expr string, lookup func(name string) (*Node, error)) (*Node, error) {
	expr = strings.TrimSpace(expr)

	if t, ok := scalarTypeMap[expr]; ok {
		return Scalar(t), nil
	}
	if m := vectorRegex.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		t, err := matchScalar(m[2], m[3])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", expr, err)
		}
		return Vector(t, n), nil
	}
	if m := matrixRegex.FindStringSubmatch(expr); m != nil {
		rows, _ := strconv.Atoi(m[1])
		cols, _ := strconv.Atoi(m[2])
		t, err := matchScalar(m[3], m[4])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", expr, err)
		}
		return Matrix(t, rows, cols), nil
	}

	base, params := splitTypeParams(expr)
	switch base {
	case "sampler", "sampler_comparison":
		return Sampler(), nil
	case "ByteAddressBuffer":
		return ByteAddressBuffer(AccessRead), nil
	case "RWByteAddressBuffer":
		return ByteAddressBuffer(AccessReadWrite), nil
	}
	if shape, ok := textureShapeMap[base]; ok {
		return Texture(shape), nil
	}

	if params != "" {
		if base == "array" {
			return parseArray(expr, params, lookup)
		}
		wrap, ok := wrapperMap[base]
		if !ok {
			return nil, fmt.Errorf("unknown generic type %q", base)
		}
		inner, err := ParseType(params, lookup)
		if err != nil {
			return nil, err
		}
		return wrap(inner), nil
	}

	if lookup == nil {
		return nil, fmt.Errorf("unknown type %q", expr)
	}
	return lookup(expr)
}

var wrapperMap = map[string]func(*Node) *Node{
	"ConstantBuffer":      ConstantBuffer,
	"ParameterBlock":      ParameterBlock,
	"TextureBuffer":       TextureBuffer,
	"ShaderStorageBuffer": ShaderStorageBuffer,
	"StructuredBuffer":    StructuredBuffer,
	"RWStructuredBuffer":  RWStructuredBuffer,
}

func parseArray(expr, params string, lookup func(string) (*Node, error)) (*Node, error) {
	parts := splitAtTopLevelCommas(params)
	element, err := ParseType(parts[0], lookup)
	if err != nil {
		return nil, err
	}
	switch len(parts) {
	case 1:
		return Array(element, 0), nil
	case 2:
		count, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("%s: invalid element count %q", expr, strings.TrimSpace(parts[1]))
		}
		return Array(element, count), nil
	default:
		return nil, fmt.Errorf("%s: too many array parameters", expr)
	}
}

func matchScalar(generic, shorthand string) (ScalarType, error) {
	if shorthand != "" {
		return shorthandScalarMap[shorthand], nil
	}
	t, ok := scalarTypeMap[generic]
	if !ok {
		return 0, fmt.Errorf("unknown component type %q", generic)
	}
	return t, nil
}

// splitTypeParams splits a parameterized type into its base name and parameter string.
// For "texture_2d<f32>" returns ("texture_2d", "f32").
// For "texture_depth_2d" (no params) returns ("texture_depth_2d", "").
//
// Parameters:
//   - typeName: the type string to split
//
// Returns:
//   - base: the type name before the first angle bracket
//   - params: the content between the outermost angle brackets, or empty if none
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return strings.TrimSpace(typeName), ""
	}
	base = strings.TrimSpace(before)
	params = strings.TrimSuffix(strings.TrimSpace(after), ">")
	params = strings.TrimSpace(params)
	return base, params
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets,
// so "array<Light, 4>, 2" splits into "array<Light, 4>" and " 2".
//
// Parameters:
//   - s: the string to split
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
