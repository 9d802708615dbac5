package reflection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// Navigate follows a textual path from c. Segments are separated by dots; a segment is a
// field name, or "$" for the element of a singleton container, optionally followed by one or
// more "[i]" indices. "surface.$.point_data[3].pos" and "[2]" are both valid paths; the empty
// path returns c unchanged. Paths produced by Cursor.Path round-trip through Navigate.
//
// Parameters:
//   - c: the starting cursor
//   - path: the path to follow
//
// Returns:
//   - Cursor: the cursor at the end of the path
//   - error: ErrNoSuchPath wrapped with the failing segment, or a syntax error
func Navigate(c Cursor, path string) (Cursor, error) {
	if path == "" {
		return c, nil
	}
	for _, seg := range strings.Split(path, ".") {
		name, indices, _ := strings.Cut(seg, "[")
		var err error
		switch name {
		case "":
			if indices == "" {
				return Cursor{}, fmt.Errorf("path %q: empty segment", path)
			}
		case "$":
			c, err = c.NavigateChild()
		default:
			c, err = c.NavigateFieldByName(name)
		}
		if err != nil {
			return Cursor{}, err
		}
		if indices == "" {
			continue
		}
		for _, idx := range strings.Split("["+indices, "[")[1:] {
			digits, ok := strings.CutSuffix(idx, "]")
			if !ok {
				return Cursor{}, fmt.Errorf("path %q: unterminated index in %q", path, seg)
			}
			i, convErr := strconv.Atoi(digits)
			if convErr != nil {
				return Cursor{}, fmt.Errorf("path %q: bad index %q", path, digits)
			}
			if c, err = c.NavigateIndex(i); err != nil {
				return Cursor{}, err
			}
		}
	}
	return c, nil
}

// Walk calls fn for c and every cursor reachable below it, parents before children: struct
// fields in declaration order, the element of each singleton container, every element of a
// fixed-size array, and element 0 of runtime-sized arrays and buffer resources.
//
// Parameters:
//   - c: the cursor to start from
//   - fn: called once per cursor; a non-nil error stops the walk and is returned
//
// Returns:
//   - error: the first error returned by fn, or ErrUnsupportedKind for an unknown node kind
func Walk(c Cursor, fn func(Cursor) error) error {
	if err := fn(c); err != nil {
		return err
	}

	n := c.Node()
	switch n.Kind() {
	case layout.KindScalar, layout.KindVector, layout.KindMatrix, layout.KindSampler:
		return nil
	case layout.KindStruct:
		for i := range n.Fields() {
			fc, err := c.NavigateField(i)
			if err != nil {
				return err
			}
			if err := Walk(fc, fn); err != nil {
				return err
			}
		}
		return nil
	case layout.KindConstantBuffer, layout.KindParameterBlock, layout.KindTextureBuffer, layout.KindShaderStorageBuffer:
		child, err := c.NavigateChild()
		if err != nil {
			return err
		}
		return Walk(child, fn)
	case layout.KindArray:
		for i := range max(n.Count(), 1) {
			ec, err := c.NavigateIndex(i)
			if err != nil {
				return err
			}
			if err := Walk(ec, fn); err != nil {
				return err
			}
		}
		return nil
	case layout.KindResource:
		if !n.Shape().IsBuffer() {
			return nil
		}
		ec, err := c.NavigateIndex(0)
		if err != nil {
			return err
		}
		return Walk(ec, fn)
	default:
		return fmt.Errorf("%w: %s at %q", ErrUnsupportedKind, n.Kind(), c.Path())
	}
}
