// Package reflection turns a reflected parameter layout into backend binding coordinates. A
// Cursor walks the layout and derives the (set, slot, uniform byte offset) of every node; the
// binding-layout builder walks the same tree and emits the descriptors each set must expose.
// The two agree by construction and CheckAgreement verifies it.
package reflection

import (
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// Cursor is a position in a layout tree together with its binding coordinate. Cursors are
// values: navigation returns a new cursor and never changes the receiver. A cursor borrows the
// tree and must not outlive a relink of the program that owns it.
type Cursor struct {
	node   *layout.Node
	offset Offset
	path   string
}

// Fresh returns the cursor at the root of a layout, at the zero offset.
//
// Parameters:
//   - root: the program's root layout node
//
// Returns:
//   - Cursor: the root cursor
func Fresh(root *layout.Node) Cursor {
	return Cursor{node: root}
}

// Node returns the layout node under the cursor.
func (c Cursor) Node() *layout.Node { return c.node }

// Offset returns the cursor's binding coordinate.
func (c Cursor) Offset() Offset { return c.offset }

// Path returns the navigation path from the root, e.g. "camera.$.frame" or "lights[2].color".
func (c Cursor) Path() string { return c.path }

func (c Cursor) String() string {
	path := c.path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%s (%s): %s", path, c.node.Kind(), c.offset)
}

// NavigateField moves to field i of a struct node.
//
// Parameters:
//   - i: the field index in declaration order
//
// Returns:
//   - Cursor: the field's cursor
//   - error: ErrNoSuchPath if the node is not a struct or i is out of range
func (c Cursor) NavigateField(i int) (Cursor, error) {
	if c.node.Kind() != layout.KindStruct {
		return Cursor{}, fmt.Errorf("%w: field %d of %s %q", ErrNoSuchPath, i, c.node.Kind(), c.path)
	}
	fields := c.node.Fields()
	if i < 0 || i >= len(fields) {
		return Cursor{}, fmt.Errorf("%w: field %d of %q, which has %d fields", ErrNoSuchPath, i, c.path, len(fields))
	}
	f := fields[i]
	return Cursor{
		node:   f.Node,
		offset: c.offset.step(fieldDelta(f), f.Node),
		path:   joinPath(c.path, f.Name),
	}, nil
}

// NavigateFieldByName moves to the named field of a struct node.
//
// Parameters:
//   - name: the field name
//
// Returns:
//   - Cursor: the field's cursor
//   - error: ErrNoSuchPath if the node is not a struct or has no such field
func (c Cursor) NavigateFieldByName(name string) (Cursor, error) {
	if c.node.Kind() != layout.KindStruct {
		return Cursor{}, fmt.Errorf("%w: field %q of %s %q", ErrNoSuchPath, name, c.node.Kind(), c.path)
	}
	i := c.node.FieldIndex(name)
	if i < 0 {
		return Cursor{}, fmt.Errorf("%w: %q has no field %q", ErrNoSuchPath, c.path, name)
	}
	return c.NavigateField(i)
}

// NavigateChild moves into the element of a singleton container (constant buffer, parameter
// block, texture buffer or shader storage buffer).
//
// Returns:
//   - Cursor: the element's cursor
//   - error: ErrNoSuchPath if the node is not a singleton container
func (c Cursor) NavigateChild() (Cursor, error) {
	if !c.node.Kind().IsSingleton() {
		return Cursor{}, fmt.Errorf("%w: %s %q has no container child", ErrNoSuchPath, c.node.Kind(), c.path)
	}
	f := c.node.ElementField()
	return Cursor{
		node:   f.Node,
		offset: c.offset.step(fieldDelta(f), f.Node),
		path:   joinPath(c.path, f.Name),
	}, nil
}

// NavigateIndex moves to element i of an array, or of a buffer resource. Fixed-size arrays are
// bounds checked; runtime-sized arrays and buffers accept any non-negative index.
//
// Parameters:
//   - i: the element index
//
// Returns:
//   - Cursor: the element's cursor
//   - error: ErrNoSuchPath if the node is not indexable or i is out of range
func (c Cursor) NavigateIndex(i int) (Cursor, error) {
	n := c.node
	switch {
	case n.Kind() == layout.KindArray:
		if i < 0 || (n.Count() > 0 && i >= n.Count()) {
			return Cursor{}, fmt.Errorf("%w: index %d of %q, which has %d elements", ErrNoSuchPath, i, c.path, n.Count())
		}
	case n.Kind() == layout.KindResource && n.Shape().IsBuffer():
		if i < 0 {
			return Cursor{}, fmt.Errorf("%w: index %d of %q", ErrNoSuchPath, i, c.path)
		}
	default:
		return Cursor{}, fmt.Errorf("%w: %s %q is not indexable", ErrNoSuchPath, n.Kind(), c.path)
	}
	elem := n.Element()
	return Cursor{
		node:   elem,
		offset: c.offset.step(indexDelta(n, i), elem),
		path:   c.path + "[" + strconv.Itoa(i) + "]",
	}, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
