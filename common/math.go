package common

import (
	"encoding/binary"
	"math"
)

// AlignUp rounds value up to the next multiple of alignment.
// Alignment must be a power of two; zero leaves value unchanged.
//
// Parameters:
//   - alignment: the required alignment (must be a power of two)
//   - value: the value to align
//
// Returns:
//   - int: value rounded up to the next multiple of alignment
func AlignUp(alignment, value int) int {
	if alignment <= 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// AppendFloat32s appends the little-endian IEEE-754 encoding of each value to dst.
//
// Parameters:
//   - dst: the destination slice
//   - values: the floats to encode
//
// Returns:
//   - []byte: the extended slice
func AppendFloat32s(dst []byte, values ...float32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// Float32sFromBytes decodes consecutive little-endian float32 values from b.
//
// Parameters:
//   - b: the source bytes, length must be a multiple of 4
//
// Returns:
//   - []float32: the decoded values
func Float32sFromBytes(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
