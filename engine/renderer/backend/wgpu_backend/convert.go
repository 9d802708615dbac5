package wgpu_backend

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
)

// layoutEntry converts one descriptor to its WebGPU layout entry. Buffers declare their
// capacity as the minimum binding size; textures are sampled as filterable floats.
func layoutEntry(d reflection.BindingDescriptor) (wgpu.BindGroupLayoutEntry, error) {
	binding, err := safecast.Conv[uint32](d.Slot)
	if err != nil {
		return wgpu.BindGroupLayoutEntry{}, fmt.Errorf("slot %d: %w", d.Slot, err)
	}
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: shaderStage(d.Visibility),
	}

	switch d.Kind {
	case reflection.BindingUniformBuffer, reflection.BindingStorageBuffer, reflection.BindingReadOnlyStorageBuffer:
		size, err := safecast.Conv[uint64](d.Capacity)
		if err != nil {
			return wgpu.BindGroupLayoutEntry{}, fmt.Errorf("slot %d capacity: %w", d.Slot, err)
		}
		entry.Buffer.Type = bufferBindingType(d.Kind)
		entry.Buffer.MinBindingSize = size
	case reflection.BindingTexture:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = viewDimension(d.ViewDimension)
		entry.Texture.Multisampled = false
	case reflection.BindingSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	default:
		return wgpu.BindGroupLayoutEntry{}, fmt.Errorf("slot %d: unknown binding kind %s", d.Slot, d.Kind)
	}
	return entry, nil
}

func bufferBindingType(k reflection.BindingKind) wgpu.BufferBindingType {
	switch k {
	case reflection.BindingUniformBuffer:
		return wgpu.BufferBindingTypeUniform
	case reflection.BindingStorageBuffer:
		return wgpu.BufferBindingTypeStorage
	case reflection.BindingReadOnlyStorageBuffer:
		return wgpu.BufferBindingTypeReadOnlyStorage
	default:
		return wgpu.BufferBindingTypeUndefined
	}
}

func shaderStage(s reflection.ShaderStage) wgpu.ShaderStage {
	stage := wgpu.ShaderStageNone
	if s&reflection.StageVertex != 0 {
		stage |= wgpu.ShaderStageVertex
	}
	if s&reflection.StageFragment != 0 {
		stage |= wgpu.ShaderStageFragment
	}
	if s&reflection.StageCompute != 0 {
		stage |= wgpu.ShaderStageCompute
	}
	return stage
}

func viewDimension(v layout.ViewDimension) wgpu.TextureViewDimension {
	switch v {
	case layout.ViewDimension1D:
		return wgpu.TextureViewDimension1D
	case layout.ViewDimension2D:
		return wgpu.TextureViewDimension2D
	case layout.ViewDimension2DArray:
		return wgpu.TextureViewDimension2DArray
	case layout.ViewDimension3D:
		return wgpu.TextureViewDimension3D
	case layout.ViewDimensionCube:
		return wgpu.TextureViewDimensionCube
	case layout.ViewDimensionCubeArray:
		return wgpu.TextureViewDimensionCubeArray
	default:
		return wgpu.TextureViewDimensionUndefined
	}
}

func textureDimension(v layout.ViewDimension) wgpu.TextureDimension {
	switch v {
	case layout.ViewDimension1D:
		return wgpu.TextureDimension1D
	case layout.ViewDimension3D:
		return wgpu.TextureDimension3D
	default:
		return wgpu.TextureDimension2D
	}
}

func bufferUsage(u backend.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&backend.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&backend.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&backend.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&backend.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

func addressMode(m backend.AddressMode) wgpu.AddressMode {
	switch m {
	case backend.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	case backend.AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	default:
		return wgpu.AddressModeRepeat
	}
}

func filterMode(m backend.FilterMode) wgpu.FilterMode {
	if m == backend.FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func mipmapFilterMode(m backend.FilterMode) wgpu.MipmapFilterMode {
	if m == backend.FilterModeNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}
