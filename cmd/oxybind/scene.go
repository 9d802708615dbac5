package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Carmen-Shannon/oxy-bind/engine/writable"
)

//go:generate go run ../writablegen --type Particle,SceneParams

// sceneLayout is the program the demo writes into: loose uniforms in the implicit constant
// buffer, a particle buffer that grows every frame and a sampled skybox.
const sceneLayout = `
[[struct]]
name = "Particle"
fields = [
  { name = "position", type = "vec3<f32>" },
  { name = "life", type = "f32" },
]

[global]
fields = [
  { name = "time", type = "f32" },
  { name = "exposure", type = "f32" },
  { name = "view_proj", type = "mat4x4<f32>" },
  { name = "particles", type = "StructuredBuffer<Particle>" },
  { name = "sky", type = "texture_cube" },
  { name = "sky_sampler", type = "sampler" },
]
`

// Particle is one element of the particle buffer.
type Particle struct {
	Position writable.Vec3
	Life     float32
}

// SceneParams mirrors the global scope of sceneLayout.
type SceneParams struct {
	Time       float32
	Exposure   writable.F32
	ViewProj   writable.Mat4
	Particles  writable.StructuredBuffer[Particle]
	Sky        writable.Texture
	SkySampler writable.Sampler

	Label string `writable:"-"`
}

// newSceneParams builds the values for one demo frame. The particle count grows with the frame
// so the particle buffer is reallocated along the way.
func newSceneParams(frame int, sky writable.Texture) SceneParams {
	particles := make([]Particle, 1+frame%8)
	for i := range particles {
		f := float32(i)
		particles[i] = Particle{Position: writable.Vec3{f, f * 0.5, -f}, Life: 1 - f/8}
	}
	return SceneParams{
		Time:       float32(frame) / 60,
		Exposure:   1,
		ViewProj:   writable.Identity4(),
		Particles:  writable.StructuredBuffer[Particle]{Items: particles},
		Sky:        sky,
		SkySampler: writable.Sampler{},
		Label:      fmt.Sprintf("frame %d", frame),
	}
}

// gradientSky builds a cube texture whose faces are flat colors.
func gradientSky(edge int) writable.Texture {
	var faces [6]image.Image
	for i := range faces {
		img := image.NewRGBA(image.Rect(0, 0, edge, edge))
		c := color.RGBA{R: uint8(40 * i), G: 90, B: uint8(255 - 40*i), A: 255}
		for y := range edge {
			for x := range edge {
				img.Set(x, y, c)
			}
		}
		faces[i] = img
	}
	return writable.NewCubeTexture(faces)
}
