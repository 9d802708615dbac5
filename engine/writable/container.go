package writable

import (
	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
)

// ConstantBuffer writes its value into the element of a constant buffer node.
type ConstantBuffer[T Writable] struct {
	Value T
}

// ParameterBlock writes its value into the element of a parameter block node, which lives in
// a descriptor set of its own.
type ParameterBlock[T Writable] struct {
	Value T
}

// ShaderStorageBuffer writes its value into the element of a storage buffer block. Before
// uploading, the buffer is resized to hold everything the value writes, rounded up to the
// block's alignment and never smaller than the block itself, so a trailing runtime-sized array
// holds exactly the elements written. A resized buffer keeps its usage and label.
type ShaderStorageBuffer[T Writable] struct {
	Value T
}

func (b ConstantBuffer[T]) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeChild(c, ctx, layout.KindConstantBuffer, b.Value)
}

func (b ParameterBlock[T]) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeChild(c, ctx, layout.KindParameterBlock, b.Value)
}

func (b ShaderStorageBuffer[T]) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	if err := expectKind(c, layout.KindShaderStorageBuffer); err != nil {
		return err
	}
	child, err := c.NavigateChild()
	if err != nil {
		return err
	}

	extent := &extentRecorder{Device: ctx.Device}
	if err := b.Value.WriteAt(child, &UploadContext{Device: extent, Resources: ctx.Resources}); err != nil {
		return err
	}
	block := child.Node()
	size := max(common.AlignUp(block.Align(), int(extent.end)), c.Node().Stride(layout.CategoryUniform))
	if err := ensureBuffer(c, ctx, uint64(size)); err != nil {
		return err
	}
	return b.Value.WriteAt(child, ctx)
}

// extentRecorder is a device that records how far buffer writes reach instead of uploading
// them.
type extentRecorder struct {
	backend.Device
	end uint64
}

func (r *extentRecorder) WriteBuffer(_ backend.Buffer, offset uint64, data []byte) error {
	r.end = max(r.end, offset+uint64(len(data)))
	return nil
}

func writeChild(c reflection.Cursor, ctx *UploadContext, kind layout.Kind, v Writable) error {
	if err := expectKind(c, kind); err != nil {
		return err
	}
	child, err := c.NavigateChild()
	if err != nil {
		return err
	}
	return v.WriteAt(child, ctx)
}
