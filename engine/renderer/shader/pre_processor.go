// pre_processor.go implements the WGSL shader pre-processor. It scans shader source for @oxy:
// annotations and replaces them with WGSL generated from the program's layout: struct
// definitions for @oxy:include, and @group/@binding declarations for @oxy:bind, numbered by the
// same cursor rules the resource pool is written with.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// root is the program's layout, nil when annotations cannot be resolved.
	root *layout.Node

	// table is the binding table built from root.
	table reflection.BindingTable

	// structs maps every struct name reachable from root to its node.
	structs map[string]*layout.Node

	// declarations accumulates the annotations expanded during a Process call. Reset at the
	// start of each Process invocation.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations, replacing
// them with WGSL generated from a program layout.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and replaces every annotation line with its
	// generated WGSL. The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source code
	//   - error: an error if any annotation is malformed, names an unknown struct or path, or
	//     there is no layout to resolve it against
	Process(source string) (string, error)

	// Declarations returns the annotations expanded during the most recent call to Process,
	// in source order.
	//
	// Returns:
	//   - []Annotation: the expanded annotations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that resolves annotations against a program layout.
// A nil root yields a pre-processor that passes annotation-free source through and rejects
// any annotation.
//
// Parameters:
//   - root: the program's root layout node, may be nil
//   - table: the binding table built from root
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(root *layout.Node, table reflection.BindingTable) PreProcessor {
	p := &preProcessor{
		root:    root,
		table:   table,
		structs: make(map[string]*layout.Node),
	}
	if root != nil {
		collectStructs(root, p.structs)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}
		if p.root == nil {
			return "", fmt.Errorf("line %d: @oxy %s annotation without a program layout", a.Line, a.Type)
		}

		var generated string
		switch a.Type {
		case AnnotationTypeInclude:
			generated, err = p.structSource(a)
		case AnnotationTypeBind:
			generated, err = p.bindSource(a)
		default:
			err = fmt.Errorf("line %d: unknown annotation type %q", a.Line, a.Type)
		}
		if err != nil {
			return "", err
		}
		out = append(out, generated)
		p.declarations = append(p.declarations, *a)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// structSource renders the plain-data fields of a layout struct as a WGSL struct. Binding
// fields carry no uniform bytes and are left out, so offsets are unchanged.
func (p *preProcessor) structSource(a *Annotation) (string, error) {
	n, ok := p.structs[a.Name]
	if !ok {
		return "", fmt.Errorf("line %d: the layout declares no struct %q", a.Line, a.Name)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct %s {\n", a.Name)
	for _, f := range n.Fields() {
		if isPlainData(f.Node) {
			fmt.Fprintf(&sb, "    %s: %s,\n", f.Name, f.Node.Name())
		}
	}
	sb.WriteString("}")
	return sb.String(), nil
}

// bindSource renders the resource declaration of the node at the annotation's path.
func (p *preProcessor) bindSource(a *Annotation) (string, error) {
	c, err := reflection.Navigate(reflection.Fresh(p.root), a.Path)
	if err != nil {
		return "", fmt.Errorf("line %d: %w", a.Line, err)
	}
	n := c.Node()

	var space, typeName string
	switch n.Kind() {
	case layout.KindConstantBuffer, layout.KindParameterBlock:
		if n.Element().Size(layout.CategoryUniform) == 0 {
			return "", fmt.Errorf("line %d: %s %q holds no uniform data", a.Line, n.Kind(), c.Path())
		}
		space, typeName = "var<uniform>", n.Element().Name()
	case layout.KindShaderStorageBuffer:
		space, typeName = "var<storage, read_write>", n.Element().Name()
	case layout.KindSampler:
		space, typeName = "var", "sampler"
	case layout.KindResource:
		switch {
		case n.Shape().IsTexture():
			space, typeName = "var", n.Shape().String()+"<f32>"
		case n.Access() == layout.AccessReadWrite:
			space, typeName = "var<storage, read_write>", "array<"+n.Element().Name()+">"
		default:
			space, typeName = "var<storage, read>", "array<"+n.Element().Name()+">"
		}
	default:
		return "", fmt.Errorf("line %d: %s %q is not a binding", a.Line, n.Kind(), c.Path())
	}

	off := c.Offset()
	if _, ok := p.table.Lookup(off.Set, off.Slot); !ok {
		return "", fmt.Errorf("line %d: %q maps to set %d, slot %d, which the binding layout does not have", a.Line, c.Path(), off.Set, off.Slot)
	}
	return fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", off.Set, off.Slot, space, a.Name, typeName), nil
}

func isPlainData(n *layout.Node) bool {
	switch n.Kind() {
	case layout.KindScalar, layout.KindVector, layout.KindMatrix:
		return true
	case layout.KindArray:
		return isPlainData(n.Element())
	case layout.KindStruct:
		return n.Size(layout.CategoryUniform) > 0
	default:
		return false
	}
}

func collectStructs(n *layout.Node, out map[string]*layout.Node) {
	if n == nil {
		return
	}
	if n.Kind() == layout.KindStruct {
		if _, seen := out[n.Name()]; seen {
			return
		}
		out[n.Name()] = n
		for _, f := range n.Fields() {
			collectStructs(f.Node, out)
		}
		return
	}
	collectStructs(n.Element(), out)
}
