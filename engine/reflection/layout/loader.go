package layout

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// fieldDescription is one field entry of a layout description file.
type fieldDescription struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// structDescription declares a named struct type.
type structDescription struct {
	Name   string             `toml:"name"`
	Fields []fieldDescription `toml:"fields"`
}

// description is the top-level shape of a layout description file:
//
//	[[struct]]
//	name = "Camera"
//	fields = [
//	  { name = "width", type = "f32" },
//	  { name = "frame", type = "mat3x3<f32>" },
//	]
//
//	[global]
//	fields = [
//	  { name = "camera", type = "ConstantBuffer<Camera>" },
//	  { name = "background", type = "texture_cube" },
//	]
type description struct {
	Structs []structDescription `toml:"struct"`
	Global  struct {
		Fields []fieldDescription `toml:"fields"`
	} `toml:"global"`
}

// Load reads a layout description file and builds the program's root node with Global.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - *Node: the root node
//   - error: an error if the file cannot be read or describes an invalid layout
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// Parse builds a program's root node from a TOML layout description.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - *Node: the root node
//   - error: an error if the document is malformed, names an unknown type or declares recursive structs
func Parse(data []byte) (*Node, error) {
	var desc description
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}

	r := &structResolver{
		decls:    make(map[string]structDescription, len(desc.Structs)),
		resolved: make(map[string]*Node, len(desc.Structs)),
		visiting: make(map[string]bool),
	}
	for _, s := range desc.Structs {
		if s.Name == "" {
			return nil, errors.New("struct declaration without a name")
		}
		if _, dup := r.decls[s.Name]; dup {
			return nil, fmt.Errorf("struct %q declared twice", s.Name)
		}
		r.decls[s.Name] = s
	}

	fields, err := r.fields("global", desc.Global.Fields)
	if err != nil {
		return nil, err
	}
	return Global(fields...), nil
}

type structResolver struct {
	decls    map[string]structDescription
	resolved map[string]*Node
	visiting map[string]bool
}

func (r *structResolver) lookup(name string) (*Node, error) {
	if n, ok := r.resolved[name]; ok {
		return n, nil
	}
	decl, ok := r.decls[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if r.visiting[name] {
		return nil, fmt.Errorf("struct %q contains itself", name)
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	fields, err := r.fields(name, decl.Fields)
	if err != nil {
		return nil, err
	}
	n := Struct(name, fields...)
	r.resolved[name] = n
	return n, nil
}

func (r *structResolver) fields(owner string, descs []fieldDescription) ([]Field, error) {
	fields := make([]Field, 0, len(descs))
	seen := make(map[string]bool, len(descs))
	for _, fd := range descs {
		if fd.Name == "" {
			return nil, fmt.Errorf("%s: field without a name", owner)
		}
		if seen[fd.Name] {
			return nil, fmt.Errorf("%s: field %q declared twice", owner, fd.Name)
		}
		seen[fd.Name] = true
		n, err := ParseType(fd.Type, r.lookup)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", owner, fd.Name, err)
		}
		fields = append(fields, NewField(fd.Name, n))
	}
	return fields, nil
}
