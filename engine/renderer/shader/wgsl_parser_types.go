package shader

import (
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// Declaration is one `@group(N) @binding(M) var<...> name: T;` resource declaration parsed from
// WGSL source.
type Declaration struct {
	// Group is the @group index.
	Group int
	// Binding is the @binding index.
	Binding int
	// Name is the declared variable name.
	Name string
	// Type is the declared WGSL type, as written.
	Type string
	// Kind is the resource type the declaration binds.
	Kind reflection.BindingKind
	// ViewDimension is the view dimension of a texture declaration.
	ViewDimension layout.ViewDimension
	// MinBindingSize is the byte size a buffer declaration needs, or 0 when the bound type could
	// not be resolved. Runtime-sized arrays count one element; structs ending in one count only
	// their fixed prefix.
	MinBindingSize int
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
