package reflection

import (
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

func f32() *layout.Node  { return layout.Scalar(layout.ScalarFloat32) }
func vec2() *layout.Node { return layout.Vector(layout.ScalarFloat32, 2) }
func vec3() *layout.Node { return layout.Vector(layout.ScalarFloat32, 3) }
func vec4() *layout.Node { return layout.Vector(layout.ScalarFloat32, 4) }
func mat3() *layout.Node { return layout.Matrix(layout.ScalarFloat32, 3, 3) }

func field(name string, n *layout.Node) layout.Field { return layout.NewField(name, n) }

// graphicsGlobal is a camera, a surface with a point buffer, a skybox and its sampler.
func graphicsGlobal() *layout.Node {
	camera := layout.Struct("Camera",
		field("width", f32()),
		field("height", f32()),
		field("frame", mat3()),
		field("frame_inv", mat3()),
		field("centre", vec3()),
		field("yfov", f32()),
	)
	hermite := layout.Struct("Hermite", field("pos", vec3()), field("normal", vec3()))
	surface := layout.Struct("SurfaceParams",
		field("support", f32()),
		field("point_count", layout.Scalar(layout.ScalarInt32)),
		field("point_data", layout.StructuredBuffer(hermite)),
	)
	skybox := layout.Struct("Skybox", field("faces", layout.Texture(layout.ShapeTextureCube)))
	return layout.Global(
		field("camera", layout.ConstantBuffer(camera)),
		field("surface", layout.ConstantBuffer(surface)),
		field("background", layout.ConstantBuffer(skybox)),
		field("background_sampler", layout.Sampler()),
	)
}

// looseGlobal holds loose uniforms followed by a variable-length buffer of vector pairs.
func looseGlobal() *layout.Node {
	pair := layout.Struct("Pair", field("a", vec2()), field("b", vec2()))
	return layout.Global(
		field("scale", f32()),
		field("basis", mat3()),
		field("pairs", layout.StructuredBuffer(pair)),
	)
}

// blockGlobal nests parameter blocks and an array of constant buffers.
func blockGlobal() *layout.Node {
	detail := layout.Struct("Detail", field("scale", f32()))
	material := layout.Struct("Material",
		field("color", vec4()),
		field("albedo", layout.Texture(layout.ShapeTexture2D)),
		field("detail", layout.ParameterBlock(detail)),
	)
	light := layout.Struct("Light", field("pos", vec3()), field("power", f32()))
	return layout.Global(
		field("time", f32()),
		field("material", layout.ParameterBlock(material)),
		field("shadow", layout.Texture(layout.ShapeTexture2D)),
		field("lights", layout.Array(layout.ConstantBuffer(light), 2)),
	)
}

// resourceGlobal has no loose bindings: only parameter blocks and arrays of resource structs.
func resourceGlobal() *layout.Node {
	pair := layout.Struct("TexturePair",
		field("color", layout.Texture(layout.ShapeTexture2D)),
		field("sampler", layout.Sampler()),
	)
	frame := layout.Struct("Frame",
		field("pairs", layout.Array(pair, 3)),
		field("volume", layout.Texture(layout.ShapeTexture3D)),
		field("counters", layout.RWStructuredBuffer(layout.Scalar(layout.ScalarUint32))),
	)
	ssbo := layout.Struct("Particles", field("count", layout.Scalar(layout.ScalarUint32)), field("data", layout.Array(vec4(), 0)))
	return layout.Global(
		field("frame", layout.ParameterBlock(frame)),
		field("frames", layout.Array(layout.ParameterBlock(frame), 2)),
		field("particles", layout.ParameterBlock(layout.Struct("Sim", field("buffer", layout.ShaderStorageBuffer(ssbo))))),
	)
}

func allFixtures() map[string]*layout.Node {
	return map[string]*layout.Node{
		"graphics": graphicsGlobal(),
		"loose":    looseGlobal(),
		"blocks":   blockGlobal(),
		"resource": resourceGlobal(),
	}
}
