package shader

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// stageRegex matches the stage attribute of every entry point
	stageRegex = regexp.MustCompile(`@(vertex|fragment|compute)\b`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: Camera;
	// or handle types: @group(2) @binding(0) var albedo: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

var stageNames = map[string]reflection.ShaderStage{
	"vertex":   reflection.StageVertex,
	"fragment": reflection.StageFragment,
	"compute":  reflection.StageCompute,
}

// parseDeclarations extracts all @group(N) @binding(M) resource declarations from WGSL source,
// ordered by group and then binding. Buffer declarations get their minimum binding size from the
// struct definitions in the same source.
//
// Parameters:
//   - source: the WGSL source code string
//
// Returns:
//   - []Declaration: the declarations
func parseDeclarations(source string) []Declaration {
	cleaned := stripComments(source)
	structs := newStructTable(parseStructBlocks(cleaned))

	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	decls := make([]Declaration, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		d := Declaration{
			Group:   group,
			Binding: binding,
			Name:    strings.TrimSpace(match[4]),
			Type:    strings.TrimSpace(match[5]),
		}
		d.Kind, d.ViewDimension = classifyResource(strings.TrimSpace(match[3]), d.Type)
		if d.Kind.IsBuffer() {
			d.MinBindingSize = structs.minBindingSize(d.Type)
		}
		decls = append(decls, d)
	}

	slices.SortStableFunc(decls, func(a, b Declaration) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Binding, b.Binding))
	})
	return decls
}

// parseStages returns the stages of every entry point in the source, or StageAll when the
// source declares none (a library of bindings shared by several entry points).
//
// Parameters:
//   - source: the WGSL source code string
//
// Returns:
//   - reflection.ShaderStage: the stage set
func parseStages(source string) reflection.ShaderStage {
	var stages reflection.ShaderStage
	for _, m := range stageRegex.FindAllStringSubmatch(stripComments(source), -1) {
		stages |= stageNames[m[1]]
	}
	if stages == 0 {
		return reflection.StageAll
	}
	return stages
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses the body of a struct block into individual fields
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		fields = append(fields, parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			isBuiltin: builtinRegex.MatchString(line),
		})
	}

	return fields
}
