package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
)

const generatedHeader = "// Code generated by writablegen. DO NOT EDIT."

// scalarWrappers converts plain Go scalar fields to the writable leaf of the same encoding.
var scalarWrappers = map[string]string{
	"float32": "writable.F32",
	"int32":   "writable.I32",
	"uint32":  "writable.U32",
}

// structInfo is a struct type found in the package and the fields its WriteAt writes.
type structInfo struct {
	name   string
	fields []fieldInfo
}

type fieldInfo struct {
	name string
	wrap string
}

// generate parses the non-test Go files of dir and returns the formatted source of WriteAt
// methods for the named struct types, in the order given.
func generate(dir string, types []string) ([]byte, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("no types given")
	}

	pkg, found, err := parsePackage(dir)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n\npackage %s\n\n", generatedHeader, pkg)
	buf.WriteString("import (\n")
	buf.WriteString("\t\"github.com/Carmen-Shannon/oxy-bind/engine/reflection\"\n")
	buf.WriteString("\t\"github.com/Carmen-Shannon/oxy-bind/engine/writable\"\n")
	buf.WriteString(")\n")

	for _, name := range types {
		info, ok := found[name]
		if !ok {
			return nil, fmt.Errorf("type %s: no struct type of that name in %s", name, dir)
		}
		writeMethod(&buf, info)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return out, nil
}

func writeMethod(buf *bytes.Buffer, info structInfo) {
	fmt.Fprintf(buf, "\n// WriteAt writes the fields of %s in declaration order.\n", info.name)
	fmt.Fprintf(buf, "func (v %s) WriteAt(c reflection.Cursor, ctx *writable.UploadContext) error {\n", info.name)
	fmt.Fprintf(buf, "\tif err := writable.ExpectStruct(c, %d); err != nil {\n\t\treturn err\n\t}\n", len(info.fields))
	for i, f := range info.fields {
		value := "v." + f.name
		if f.wrap != "" {
			value = f.wrap + "(" + value + ")"
		}
		fmt.Fprintf(buf, "\tif err := writable.Field(c, %d, %s, ctx); err != nil {\n\t\treturn err\n\t}\n", i, value)
	}
	buf.WriteString("\treturn nil\n}\n")
}

// parsePackage returns the package name of dir and every struct type declared in it.
func parsePackage(dir string) (string, map[string]structInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, err
	}

	fset := token.NewFileSet()
	pkg := ""
	found := make(map[string]structInfo)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return "", nil, err
		}
		if isGenerated(file) {
			continue
		}
		if pkg == "" {
			pkg = file.Name.Name
		}
		collectStructs(file, found)
	}
	if pkg == "" {
		return "", nil, fmt.Errorf("no Go files in %s", dir)
	}
	return pkg, found, nil
}

func isGenerated(file *ast.File) bool {
	return slices.ContainsFunc(file.Comments, func(g *ast.CommentGroup) bool {
		return slices.ContainsFunc(g.List, func(c *ast.Comment) bool {
			return c.Text == generatedHeader
		})
	})
}

func collectStructs(file *ast.File, found map[string]structInfo) {
	ast.Inspect(file, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		st, ok := ts.Type.(*ast.StructType)
		if !ok || ts.TypeParams != nil {
			return false
		}
		info := structInfo{name: ts.Name.Name}
		for _, f := range st.Fields.List {
			if f.Tag != nil {
				tag := reflect.StructTag(strings.Trim(f.Tag.Value, "`"))
				if tag.Get("writable") == "-" {
					continue
				}
			}
			wrap := ""
			if ident, ok := f.Type.(*ast.Ident); ok {
				wrap = scalarWrappers[ident.Name]
			}
			for _, name := range f.Names {
				if name.IsExported() {
					info.fields = append(info.fields, fieldInfo{name: name.Name, wrap: wrap})
				}
			}
		}
		found[info.name] = info
		return false
	})
}
