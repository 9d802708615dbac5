package writable

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
)

// StructuredBuffer writes a variable number of elements into a structured or byte-address
// buffer. The buffer at the cursor's coordinate is sized to exactly max(len(Items), 1)
// elements; when the existing buffer has any other size it is replaced, keeping its usage and
// label, before the elements are written. The pool must already hold a buffer there.
type StructuredBuffer[T Writable] struct {
	Items []T
}

func (b StructuredBuffer[T]) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	n := c.Node()
	if n.Kind() != layout.KindResource || !n.Shape().IsBuffer() {
		return fmt.Errorf("%w: structured buffer written at %q, a %s %s", ErrTypeMismatch, c.Path(), n.Kind(), n.Shape())
	}
	size := uint64(max(len(b.Items), 1) * n.Stride(layout.CategoryUniform))
	if err := ensureBuffer(c, ctx, size); err != nil {
		return err
	}
	for i, v := range b.Items {
		ec, err := c.NavigateIndex(i)
		if err != nil {
			return err
		}
		if err := v.WriteAt(ec, ctx); err != nil {
			return err
		}
	}
	return nil
}

// ensureBuffer resizes the buffer at the cursor's coordinate to exactly size bytes, keeping
// its usage and label. The buffer must already be in the pool.
func ensureBuffer(c reflection.Cursor, ctx *UploadContext, size uint64) error {
	off := c.Offset()
	old, err := ctx.Resources.Buffer(off.Set, off.Slot)
	if err != nil {
		return fmt.Errorf("resizing %q: %w", c.Path(), err)
	}
	if old.Size() == size {
		return nil
	}
	buf, err := ctx.Device.CreateBuffer(backend.BufferDescriptor{
		Label: old.Label(),
		Size:  size,
		Usage: old.Usage(),
	})
	if err != nil {
		return fmt.Errorf("allocating %q: %w", c.Path(), err)
	}
	ctx.Stats.CountReallocation()
	ctx.Resources.SetBuffer(off.Set, off.Slot, buf)
	return nil
}
