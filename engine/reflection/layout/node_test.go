package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveSizes(t *testing.T) {
	tests := []struct {
		name  string
		node  *Node
		size  int
		align int
	}{
		{"f32", Scalar(ScalarFloat32), 4, 4},
		{"f16", Scalar(ScalarFloat16), 2, 2},
		{"vec2f", Vector(ScalarFloat32, 2), 8, 8},
		{"vec3f", Vector(ScalarFloat32, 3), 12, 16},
		{"vec4f", Vector(ScalarFloat32, 4), 16, 16},
		{"mat3x3f", Matrix(ScalarFloat32, 3, 3), 48, 16},
		{"mat4x4f", Matrix(ScalarFloat32, 4, 4), 64, 16},
		{"mat3x2f", Matrix(ScalarFloat32, 3, 2), 24, 8},
		{"mat2x3f", Matrix(ScalarFloat32, 2, 3), 32, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.size, tt.node.Size(CategoryUniform))
			assert.Equal(t, tt.align, tt.node.Align())
			assert.Zero(t, tt.node.Size(CategorySlot))
			assert.Zero(t, tt.node.Size(CategorySet))
		})
	}
}

func TestMatrixRowStride(t *testing.T) {
	m := Matrix(ScalarFloat32, 3, 3)
	assert.Equal(t, 16, m.Stride(CategoryUniform))
	assert.Equal(t, 3, m.Count())
	assert.Equal(t, KindVector, m.Element().Kind())
}

func TestStructUniformOffsets(t *testing.T) {
	s := Struct("Camera",
		NewField("width", Scalar(ScalarFloat32)),
		NewField("height", Scalar(ScalarFloat32)),
		NewField("frame", Matrix(ScalarFloat32, 3, 3)),
		NewField("centre", Vector(ScalarFloat32, 3)),
		NewField("yfov", Scalar(ScalarFloat32)),
	)

	offsets := make([]int, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		offsets = append(offsets, f.Offset(CategoryUniform))
	}
	assert.Equal(t, []int{0, 4, 16, 64, 76}, offsets)
	assert.Equal(t, 80, s.Size(CategoryUniform))
	assert.Equal(t, 16, s.Align())
}

func TestStructBindingOffsets(t *testing.T) {
	inner := Struct("Inner", NewField("x", Scalar(ScalarFloat32)))
	block := Struct("Block",
		NewField("y", Scalar(ScalarFloat32)),
		NewField("tex", Texture(ShapeTexture2D)),
	)
	s := Struct("Scope",
		NewField("a", Texture(ShapeTexture2D)),
		NewField("b", ConstantBuffer(inner)),
		NewField("c", Sampler()),
		NewField("d", ParameterBlock(block)),
		NewField("e", Texture(ShapeTextureCube)),
		NewField("f", ParameterBlock(block)),
	)

	var slots, sets []int
	for _, f := range s.Fields() {
		slots = append(slots, f.Offset(CategorySlot))
		sets = append(sets, f.Offset(CategorySet))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 3, 4}, slots)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1}, sets)
	assert.Equal(t, 4, s.Size(CategorySlot))
	assert.Equal(t, 2, s.Size(CategorySet))
	assert.Zero(t, s.Size(CategoryUniform))
}

func TestSingletonContainers(t *testing.T) {
	data := Struct("Data", NewField("x", Vector(ScalarFloat32, 4)))
	resources := Struct("Resources", NewField("tex", Texture(ShapeTexture2D)))

	cb := ConstantBuffer(data)
	assert.Equal(t, 1, cb.ContainerSize(CategorySlot))
	assert.Equal(t, 1, cb.Size(CategorySlot))
	assert.Equal(t, 1, cb.ElementField().Offset(CategorySlot))

	empty := ConstantBuffer(resources)
	assert.Zero(t, empty.ContainerSize(CategorySlot))
	assert.Equal(t, 1, empty.Size(CategorySlot))

	pb := ParameterBlock(data)
	assert.Equal(t, 1, pb.ContainerSize(CategorySet))
	assert.Equal(t, 1, pb.ContainerSize(CategorySlot))
	assert.Zero(t, pb.Size(CategorySlot))
	assert.Equal(t, 1, pb.Size(CategorySet))
	assert.Equal(t, 1, pb.ElementField().Offset(CategorySet))

	ssb := ShaderStorageBuffer(data)
	assert.Equal(t, 1, ssb.ContainerSize(CategorySlot))
	assert.Equal(t, 16, ssb.Stride(CategoryUniform))

	assert.Nil(t, data.ElementField().Node)
}

func TestArrayStrides(t *testing.T) {
	light := Struct("Light",
		NewField("pos", Vector(ScalarFloat32, 3)),
		NewField("shadow", Texture(ShapeTexture2D)),
	)
	arr := Array(light, 4)
	assert.Equal(t, 16, arr.Stride(CategoryUniform))
	assert.Equal(t, 1, arr.Stride(CategorySlot))
	assert.Equal(t, 64, arr.Size(CategoryUniform))
	assert.Equal(t, 4, arr.Size(CategorySlot))

	runtime := Array(Scalar(ScalarFloat32), 0)
	assert.Zero(t, runtime.Size(CategoryUniform))
	assert.Equal(t, 4, runtime.Stride(CategoryUniform))
	assert.Equal(t, "array<f32>", runtime.Name())
}

func TestGlobalScope(t *testing.T) {
	t.Run("loose uniforms are wrapped and reserve set 0", func(t *testing.T) {
		root := Global(
			NewField("time", Scalar(ScalarFloat32)),
			NewField("material", ParameterBlock(Struct("M", NewField("c", Vector(ScalarFloat32, 4))))),
		)
		require.Equal(t, KindConstantBuffer, root.Kind())
		assert.Equal(t, 1, root.ReservedSets())
		scope := root.ElementField().Node
		assert.Equal(t, 1, scope.Fields()[1].Offset(CategorySet))
	})

	t.Run("scope of parameter blocks only starts at set 0", func(t *testing.T) {
		root := Global(
			NewField("a", ParameterBlock(Struct("A", NewField("c", Scalar(ScalarFloat32))))),
			NewField("b", ParameterBlock(Struct("B", NewField("c", Scalar(ScalarFloat32))))),
		)
		require.Equal(t, KindStruct, root.Kind())
		assert.Zero(t, root.ReservedSets())
		assert.Equal(t, 0, root.Fields()[0].Offset(CategorySet))
		assert.Equal(t, 1, root.Fields()[1].Offset(CategorySet))
	})

	t.Run("loose textures reserve set 0 without a buffer", func(t *testing.T) {
		root := Global(
			NewField("tex", Texture(ShapeTexture2D)),
			NewField("pb", ParameterBlock(Struct("P", NewField("c", Scalar(ScalarFloat32))))),
		)
		require.Equal(t, KindStruct, root.Kind())
		assert.Equal(t, 1, root.ReservedSets())
		assert.Equal(t, 1, root.Fields()[1].Offset(CategorySet))
	})
}

func TestBindingTypes(t *testing.T) {
	data := Struct("D", NewField("x", Scalar(ScalarFloat32)))
	assert.Equal(t, BindingTypeSampler, Sampler().BindingType())
	assert.Equal(t, BindingTypeTexture, Texture(ShapeTexture3D).BindingType())
	assert.Equal(t, BindingTypeRawBuffer, StructuredBuffer(data).BindingType())
	assert.Equal(t, BindingTypeMutableRawBuffer, RWStructuredBuffer(data).BindingType())
	assert.Equal(t, BindingTypeConstantBuffer, ConstantBuffer(data).BindingType())
	assert.Equal(t, BindingTypeParameterBlock, ParameterBlock(data).BindingType())
	assert.Equal(t, BindingTypeTextureBuffer, TextureBuffer(data).BindingType())
	assert.Equal(t, BindingTypeMutableRawBuffer, ShaderStorageBuffer(data).BindingType())
	assert.Equal(t, BindingTypeNone, data.BindingType())
}

func TestBindingRanges(t *testing.T) {
	textures := Array(Texture(ShapeTexture2D), 4)
	assert.Equal(t, []BindingRange{{BindingTypeTexture, 4}}, textures.BindingRanges())

	pair := Struct("Pair", NewField("t", Texture(ShapeTexture2D)), NewField("s", Sampler()))
	pairs := Array(pair, 2)
	assert.Equal(t, []BindingRange{
		{BindingTypeTexture, 1}, {BindingTypeSampler, 1},
		{BindingTypeTexture, 1}, {BindingTypeSampler, 1},
	}, pairs.BindingRanges())

	cb := ConstantBuffer(Struct("C", NewField("x", Scalar(ScalarFloat32)), NewField("t", Texture(ShapeTexture2D))))
	assert.Equal(t, []BindingRange{{BindingTypeConstantBuffer, 1}, {BindingTypeTexture, 1}}, cb.BindingRanges())
}

func TestDigest(t *testing.T) {
	build := func(n int) *Node {
		return Global(NewField("points", StructuredBuffer(Struct("P", NewField("v", Vector(ScalarFloat32, n))))))
	}
	assert.Equal(t, DigestOf(build(3)), DigestOf(build(3)))
	assert.NotEqual(t, DigestOf(build(3)), DigestOf(build(4)))
	assert.Len(t, DigestOf(build(2)).String(), 64)
}
