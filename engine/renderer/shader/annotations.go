// annotations.go defines the annotations understood by the WGSL pre-processor. Annotations are
// single-line WGSL comments prefixed with @oxy: that let a shader take its struct definitions
// and its @group/@binding numbers from the program's layout instead of hard-coding them.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude emits the WGSL definition of a plain-data struct declared in the
	// program's layout.
	//
	// Syntax: //@oxy:include <struct_name>
	//
	// Example: //@oxy:include Camera
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBind emits the resource declaration for the layout node at a path, with the
	// group and binding the binding-layout builder assigned to it. The path is omitted to bind
	// the implicit constant buffer that holds a program's loose uniforms.
	//
	// Syntax: //@oxy:bind <var_name> [path]
	//
	// Examples:
	//   //@oxy:bind camera camera
	//   //@oxy:bind points surface.$.point_data
	//   //@oxy:bind globals
	AnnotationTypeBind AnnotationType = "bind"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Name is the struct name for include annotations and the variable name for bind annotations.
	Name string

	// Path is the layout path of a bind annotation, empty for the root.
	Path string

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	comment, ok := strings.CutPrefix(strings.TrimSpace(line), "//")
	if !ok {
		return nil, nil
	}
	after, ok := strings.CutPrefix(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		return &Annotation{Type: AnnotationTypeInclude, Name: args[1], Line: lineNum}, nil
	case AnnotationTypeBind:
		if len(args) < 2 || len(args) > 3 {
			return nil, fmt.Errorf("line %d: @oxy bind annotation requires a variable name and an optional path", lineNum)
		}
		a := &Annotation{Type: AnnotationTypeBind, Name: args[1], Line: lineNum}
		if len(args) == 3 {
			a.Path = args[2]
		}
		return a, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
