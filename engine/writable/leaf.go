package writable

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// F32 is a 32-bit float uniform.
type F32 float32

// I32 is a 32-bit signed integer uniform.
type I32 int32

// U32 is a 32-bit unsigned integer uniform.
type U32 uint32

// Vec2 is a two-component float vector.
type Vec2 [2]float32

// Vec3 is a three-component float vector. It occupies 12 bytes; the padding after it belongs
// to the enclosing struct.
type Vec3 [3]float32

// Vec4 is a four-component float vector.
type Vec4 [4]float32

// Mat3 is a row-major 3x3 float matrix. Each row is padded to 16 bytes when encoded.
type Mat3 [3][3]float32

// Mat4 is a row-major 4x4 float matrix.
type Mat4 [4][4]float32

// Identity3 returns the 3x3 identity matrix.
//
// Returns:
//   - Mat3: the identity
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Identity4 returns the 4x4 identity matrix.
//
// Returns:
//   - Mat4: the identity
func Identity4() Mat4 {
	return Mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
}

// Bytes returns the little-endian encoding of v.
func (v F32) Bytes() []byte { return common.AppendFloat32s(nil, float32(v)) }

// Bytes returns the little-endian encoding of v.
func (v I32) Bytes() []byte { return binary.LittleEndian.AppendUint32(nil, uint32(v)) }

// Bytes returns the little-endian encoding of v.
func (v U32) Bytes() []byte { return binary.LittleEndian.AppendUint32(nil, uint32(v)) }

// Bytes returns the packed little-endian components of v.
func (v Vec2) Bytes() []byte { return common.AppendFloat32s(nil, v[:]...) }

// Bytes returns the packed little-endian components of v.
func (v Vec3) Bytes() []byte { return common.AppendFloat32s(nil, v[:]...) }

// Bytes returns the packed little-endian components of v.
func (v Vec4) Bytes() []byte { return common.AppendFloat32s(nil, v[:]...) }

// Bytes returns the rows of m, each followed by four bytes of padding: 48 bytes in all.
func (m Mat3) Bytes() []byte {
	out := make([]byte, 0, 48)
	for _, row := range m {
		out = common.AppendFloat32s(out, row[0], row[1], row[2], 0)
	}
	return out
}

// Bytes returns the rows of m back to back: 64 bytes in all.
func (m Mat4) Bytes() []byte {
	out := make([]byte, 0, 64)
	for _, row := range m {
		out = common.AppendFloat32s(out, row[:]...)
	}
	return out
}

func (v F32) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeScalar(c, ctx, layout.ScalarFloat32, v.Bytes())
}

func (v I32) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeScalar(c, ctx, layout.ScalarInt32, v.Bytes())
}

func (v U32) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeScalar(c, ctx, layout.ScalarUint32, v.Bytes())
}

func (v Vec2) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeFloats(c, ctx, layout.KindVector, 2, 1, v.Bytes())
}

func (v Vec3) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeFloats(c, ctx, layout.KindVector, 3, 1, v.Bytes())
}

func (v Vec4) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeFloats(c, ctx, layout.KindVector, 4, 1, v.Bytes())
}

func (m Mat3) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeFloats(c, ctx, layout.KindMatrix, 3, 3, m.Bytes())
}

func (m Mat4) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	return writeFloats(c, ctx, layout.KindMatrix, 4, 4, m.Bytes())
}

// writeScalar also rejects a scalar of the right size but the wrong type, so an i32 never
// lands in an f32 field.
func writeScalar(c reflection.Cursor, ctx *UploadContext, t layout.ScalarType, data []byte) error {
	if n := c.Node(); n.Kind() == layout.KindScalar && n.Scalar() != t {
		return fmt.Errorf("%w: %s written at %q, a %s", ErrTypeMismatch, t, c.Path(), n.Scalar())
	}
	return writeBytes(c, ctx, layout.KindScalar, data)
}

// writeFloats checks that the node under the cursor is a float vector of cols components, or a
// float matrix of rows rows with cols components each, before uploading data.
func writeFloats(c reflection.Cursor, ctx *UploadContext, kind layout.Kind, cols, rows int, data []byte) error {
	n := c.Node()
	if n.Kind() == kind {
		gotRows, gotCols := 1, n.Count()
		if kind == layout.KindMatrix {
			gotRows, gotCols = n.Count(), n.Element().Count()
		}
		if n.Scalar() != layout.ScalarFloat32 || gotRows != rows || gotCols != cols {
			return fmt.Errorf("%w: %s of %dx%d %s written at %q, a %s", ErrTypeMismatch,
				kind, rows, cols, layout.ScalarFloat32, c.Path(), n.Name())
		}
	}
	return writeBytes(c, ctx, kind, data)
}
