package shader

import (
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// ShaderOption is a functional option used to configure a Shader during construction.
type ShaderOption func(*shader)

// WithLayout resolves the shader's @oxy: annotations against a program layout and the binding
// table built from it.
//
// Parameters:
//   - root: the program's root layout node
//   - table: the binding table built from root
//
// Returns:
//   - ShaderOption: a function that installs the pre-processor
func WithLayout(root *layout.Node, table reflection.BindingTable) ShaderOption {
	return func(s *shader) {
		s.pp = NewPreProcessor(root, table)
	}
}
