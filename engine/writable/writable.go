// Package writable projects application values into a program's binding resources. A value
// writes itself at a Cursor: leaves upload their bytes into the buffer at the cursor's (set,
// slot) and byte offset, composites navigate to their fields and delegate, and resource values
// create or replace the pool entry at their coordinate before uploading.
package writable

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-bind/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/binding_resources"
)

// ErrTypeMismatch is returned when a value is written at a layout node of a different shape.
var ErrTypeMismatch = errors.New("value does not match layout node")

// UploadContext bundles what a write needs besides the cursor: the device that performs
// uploads and allocations, the pool the resources live in, and an optional profiler.
type UploadContext struct {
	Device    backend.Device
	Resources binding_resources.BindingResources
	Stats     *profiler.Profiler
}

// Writable is implemented by every value that can be projected into binding resources.
type Writable interface {
	// WriteAt writes the value at the cursor's coordinate.
	//
	// Parameters:
	//   - c: the cursor positioned at the layout node this value maps to
	//   - ctx: the upload context
	//
	// Returns:
	//   - error: ErrTypeMismatch, reflection.ErrNoSuchPath or binding_resources.ErrMissingResource
	//     when the value and layout disagree, or a device error
	WriteAt(c reflection.Cursor, ctx *UploadContext) error
}

// WriterFunc adapts a function to Writable.
type WriterFunc func(c reflection.Cursor, ctx *UploadContext) error

func (f WriterFunc) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return f(c, ctx)
}

// Write writes v at the root of a layout with a fresh cursor.
//
// Parameters:
//   - root: the program's root layout node
//   - v: the value to write
//   - ctx: the upload context
//
// Returns:
//   - error: the first error v reports
func Write(root *layout.Node, v Writable, ctx *UploadContext) error {
	return v.WriteAt(reflection.Fresh(root), ctx)
}

// Field navigates to field i of the struct under c and writes v there. Generated WriteAt
// methods are built from calls to Field.
//
// Parameters:
//   - c: a cursor positioned at a struct node
//   - i: the field index
//   - v: the field's value
//   - ctx: the upload context
//
// Returns:
//   - error: the navigation or write error
func Field(c reflection.Cursor, i int, v Writable, ctx *UploadContext) error {
	fc, err := c.NavigateField(i)
	if err != nil {
		return err
	}
	return v.WriteAt(fc, ctx)
}

// ExpectStruct checks that the node under c is a struct of n fields. Generated WriteAt methods
// call it before writing their fields.
//
// Parameters:
//   - c: the cursor the value is written at
//   - n: the number of fields the value writes
//
// Returns:
//   - error: ErrTypeMismatch if the node is not a struct or has a different field count
func ExpectStruct(c reflection.Cursor, n int) error {
	if err := expectKind(c, layout.KindStruct); err != nil {
		return err
	}
	if want := len(c.Node().Fields()); want != n {
		return fmt.Errorf("%w: %d values written at %q, which has %d fields", ErrTypeMismatch, n, c.Path(), want)
	}
	return nil
}

// writeBytes uploads data into the buffer at the cursor's coordinate after checking that the
// node under the cursor is a data node of the same size.
func writeBytes(c reflection.Cursor, ctx *UploadContext, kind layout.Kind, data []byte) error {
	n := c.Node()
	if n.Kind() != kind || n.Size(layout.CategoryUniform) != len(data) {
		return fmt.Errorf("%w: %d-byte %s written at %q, a %d-byte %s", ErrTypeMismatch,
			len(data), kind, c.Path(), n.Size(layout.CategoryUniform), n.Kind())
	}
	off := c.Offset()
	buf, err := ctx.Resources.Buffer(off.Set, off.Slot)
	if err != nil {
		return fmt.Errorf("writing %q: %w", c.Path(), err)
	}
	if err := ctx.Device.WriteBuffer(buf, uint64(off.Uniform), data); err != nil {
		return fmt.Errorf("writing %q: %w", c.Path(), err)
	}
	ctx.Stats.CountWrite(len(data))
	return nil
}

func expectKind(c reflection.Cursor, kinds ...layout.Kind) error {
	for _, k := range kinds {
		if c.Node().Kind() == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is a %s, expected one of %v", ErrTypeMismatch, c.Path(), c.Node().Kind(), kinds)
}

func resourceLabel(ctx *UploadContext, c reflection.Cursor) string {
	return ctx.Resources.Label() + " " + c.Path()
}
