package renderer

import (
	"github.com/google/uuid"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
)

// ProgramOption is a functional option used to configure a Program during construction.
type ProgramOption func(*program)

// WithID sets the program's identifier instead of generating a random one.
//
// Parameters:
//   - id: the program ID
//
// Returns:
//   - ProgramOption: a function that sets the ID
func WithID(id uuid.UUID) ProgramOption {
	return func(p *program) {
		p.id = id
	}
}

// WithVisibility restricts the program's bindings to a set of shader stages. Bindings are
// visible to every stage by default.
//
// Parameters:
//   - stages: the stage mask
//
// Returns:
//   - ProgramOption: a function that sets the visibility
func WithVisibility(stages reflection.ShaderStage) ProgramOption {
	return func(p *program) {
		p.visibility = stages
	}
}
