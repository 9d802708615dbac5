package shader

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
)

// shader is the implementation of the Shader interface.
// It holds the pre-processed source and the resource declarations parsed from it.
type shader struct {
	key          string
	source       string
	stages       reflection.ShaderStage
	declarations []Declaration
	annotations  []Annotation

	pp PreProcessor
}

// Shader is a loaded and parsed WGSL shader: its pre-processed source, the stages of its entry
// points and the resource declarations it makes. It is the compiled-shader side of the binding
// cross-check run by Verify.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Stages returns the stages of the shader's entry points, or StageAll for a source without
	// entry points.
	//
	// Returns:
	//   - reflection.ShaderStage: the stage set
	Stages() reflection.ShaderStage

	// Declarations returns every resource declaration in the source, ordered by group and
	// binding.
	//
	// Returns:
	//   - []Declaration: the declarations
	Declarations() []Declaration

	// Declaration retrieves the declaration at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - Declaration: the declaration
	//   - bool: false if the shader declares nothing there
	Declaration(group, binding int) (Declaration, bool)

	// Annotations returns the @oxy: annotations the pre-processor expanded, in source order.
	//
	// Returns:
	//   - []Annotation: the expanded annotations
	Annotations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and parses WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the raw WGSL source
//   - options: a variadic list of options to configure the shader
//
// Returns:
//   - Shader: the parsed shader
//   - error: a pre-processing error
func NewShader(key, source string, options ...ShaderOption) (Shader, error) {
	s := &shader{
		key: key,
		pp:  NewPreProcessor(nil, nil),
	}
	for _, opt := range options {
		opt(s)
	}

	processed, err := s.pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s.source = processed
	s.annotations = append([]Annotation(nil), s.pp.Declarations()...)
	s.stages = parseStages(processed)
	s.declarations = parseDeclarations(processed)
	return s, nil
}

// LoadShader reads a WGSL file and parses it with NewShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the WGSL file to read
//   - options: a variadic list of options to configure the shader
//
// Returns:
//   - Shader: the parsed shader
//   - error: a read or pre-processing error
func LoadShader(key, path string, options ...ShaderOption) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read source file %q: %w", key, path, err)
	}
	return NewShader(key, string(data), options...)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Stages() reflection.ShaderStage {
	return s.stages
}

func (s *shader) Declarations() []Declaration {
	return s.declarations
}

func (s *shader) Declaration(group, binding int) (Declaration, bool) {
	for _, d := range s.declarations {
		if d.Group == group && d.Binding == binding {
			return d, true
		}
	}
	return Declaration{}, false
}

func (s *shader) Annotations() []Annotation {
	return s.annotations
}
