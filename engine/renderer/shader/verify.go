package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
)

// Mismatch is a shader declaration the binding table cannot satisfy.
type Mismatch struct {
	Set    int
	Slot   int
	Name   string
	Reason string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d) %s: %s", m.Set, m.Slot, m.Name, m.Reason)
}

// Verify cross-checks a binding table against the declarations of a compiled shader. Every
// declaration must land on a table slot of the same kind and view dimension, with a buffer
// capacity of at least the declared type's size, visible to the shader's stages. Table slots the
// shader never declares are allowed: a layout may serve several shaders.
//
// Parameters:
//   - table: the table BuildBindingLayout produced
//   - sh: the parsed shader
//
// Returns:
//   - []Mismatch: every mismatch found, ordered by group and binding
func Verify(table reflection.BindingTable, sh Shader) []Mismatch {
	var out []Mismatch
	for _, d := range sh.Declarations() {
		report := func(format string, args ...any) {
			out = append(out, Mismatch{Set: d.Group, Slot: d.Binding, Name: d.Name, Reason: fmt.Sprintf(format, args...)})
		}

		if d.Kind == bindingUnsupported {
			report("unsupported resource type %s", d.Type)
			continue
		}
		if _, ok := table[d.Group]; !ok {
			report("set %d is not in the binding layout", d.Group)
			continue
		}
		desc, ok := table.Lookup(d.Group, d.Binding)
		if !ok {
			report("slot %d is not in set %d of the binding layout", d.Binding, d.Group)
			continue
		}
		if desc.Kind != d.Kind {
			report("shader declares a %s, layout slot %s is a %s", d.Kind, desc.Name, desc.Kind)
			continue
		}
		if d.Kind == reflection.BindingTexture && desc.ViewDimension != d.ViewDimension {
			report("shader samples a %s view, layout slot %s declares %s", d.ViewDimension, desc.Name, desc.ViewDimension)
		}
		if d.Kind.IsBuffer() && d.MinBindingSize > desc.Capacity {
			report("%s needs %d bytes, layout slot %s holds %d", d.Type, d.MinBindingSize, desc.Name, desc.Capacity)
		}
		if stages := sh.Stages(); desc.Visibility&stages != stages {
			report("layout slot %s is not visible to every stage of the shader", desc.Name)
		}
	}
	return out
}
