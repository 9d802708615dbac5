package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// bindingUnsupported marks declarations whose type has no BindingKind, such as storage textures.
const bindingUnsupported reflection.BindingKind = -1

// wgslTextureDimMap maps WGSL sampled and depth texture base names to their view dimension
var wgslTextureDimMap = map[string]layout.ViewDimension{
	"texture_1d":                    layout.ViewDimension1D,
	"texture_2d":                    layout.ViewDimension2D,
	"texture_2d_array":              layout.ViewDimension2DArray,
	"texture_3d":                    layout.ViewDimension3D,
	"texture_cube":                  layout.ViewDimensionCube,
	"texture_cube_array":            layout.ViewDimensionCubeArray,
	"texture_multisampled_2d":       layout.ViewDimension2D,
	"texture_depth_2d":              layout.ViewDimension2D,
	"texture_depth_2d_array":        layout.ViewDimension2DArray,
	"texture_depth_cube":            layout.ViewDimensionCube,
	"texture_depth_cube_array":      layout.ViewDimensionCubeArray,
	"texture_depth_multisampled_2d": layout.ViewDimension2D,
}

// classifyResource determines the binding kind of a parsed WGSL resource declaration from its
// address space qualifier and type name.
//
// Parameters:
//   - addressSpace: the address space qualifier (e.g. "uniform", "storage, read_write"), empty for handle types
//   - typeName: the WGSL type string (e.g. "Camera", "texture_2d<f32>", "sampler")
//
// Returns:
//   - reflection.BindingKind: the binding kind, or bindingUnsupported
//   - layout.ViewDimension: the view dimension for textures
func classifyResource(addressSpace, typeName string) (reflection.BindingKind, layout.ViewDimension) {
	switch {
	case addressSpace == "uniform":
		return reflection.BindingUniformBuffer, layout.ViewDimensionUndefined
	case strings.HasPrefix(addressSpace, "storage"):
		if strings.Contains(addressSpace, "read_write") {
			return reflection.BindingStorageBuffer, layout.ViewDimensionUndefined
		}
		return reflection.BindingReadOnlyStorageBuffer, layout.ViewDimensionUndefined
	case addressSpace != "":
		return bindingUnsupported, layout.ViewDimensionUndefined
	}

	switch {
	case typeName == "sampler", typeName == "sampler_comparison":
		return reflection.BindingSampler, layout.ViewDimensionUndefined
	case strings.HasPrefix(typeName, "texture_storage_"):
		return bindingUnsupported, layout.ViewDimensionUndefined
	}
	base, _, _ := strings.Cut(typeName, "<")
	if dim, ok := wgslTextureDimMap[strings.TrimSpace(base)]; ok {
		return reflection.BindingTexture, dim
	}
	return bindingUnsupported, layout.ViewDimensionUndefined
}

// structTable resolves struct names parsed from WGSL into layout nodes on demand, so buffer sizes
// follow exactly the layout rules the binding-layout builder uses.
type structTable struct {
	parsed    map[string]parsedStruct
	resolved  map[string]*layout.Node
	resolving map[string]bool
}

func newStructTable(structs []parsedStruct) *structTable {
	t := &structTable{
		parsed:    make(map[string]parsedStruct, len(structs)),
		resolved:  make(map[string]*layout.Node),
		resolving: make(map[string]bool),
	}
	for _, ps := range structs {
		t.parsed[ps.name] = ps
	}
	return t
}

func (t *structTable) lookup(name string) (*layout.Node, error) {
	if n, ok := t.resolved[name]; ok {
		return n, nil
	}
	ps, ok := t.parsed[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if t.resolving[name] {
		return nil, fmt.Errorf("struct %q contains itself", name)
	}
	t.resolving[name] = true
	defer delete(t.resolving, name)

	fields := make([]layout.Field, 0, len(ps.fields))
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		n, err := layout.ParseType(f.typeName, t.lookup)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, f.name, err)
		}
		fields = append(fields, layout.NewField(f.name, n))
	}
	n := layout.Struct(name, fields...)
	t.resolved[name] = n
	return n, nil
}

// minBindingSize returns the byte size a buffer of the given type needs, or 0 when the type
// cannot be resolved. A bare runtime-sized array needs one element.
func (t *structTable) minBindingSize(typeName string) int {
	n, err := layout.ParseType(typeName, t.lookup)
	if err != nil {
		return 0
	}
	if n.Kind() == layout.KindArray && n.Count() == 0 {
		return n.Stride(layout.CategoryUniform)
	}
	return n.Size(layout.CategoryUniform)
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// WGSL block comments nest.
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with all comments removed
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments from WGSL source
func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments (/* ... */) from WGSL source, handling nesting
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets,
// so the comma in array<Light, 4> does not end a struct field.
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
	return append(parts, s[start:])
}
