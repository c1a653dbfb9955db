package renderer

import "github.com/cogentcore/webgpu/wgpu"

const (
	vertexFragment = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
)

func uniformEntry(binding uint32, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
	entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	return entry
}

func textureEntry(binding uint32, sampleType wgpu.TextureSampleType) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: wgpu.ShaderStageFragment}
	entry.Texture.SampleType = sampleType
	entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	return entry
}

func samplerEntry(binding uint32, samplerType wgpu.SamplerBindingType) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: wgpu.ShaderStageFragment}
	entry.Sampler.Type = samplerType
	return entry
}

// frameLayoutDescriptor describes group 0 of the lit pipeline: camera, lights, shadow data, shadow map and its
// comparison sampler.
func frameLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, vertexFragment),
			uniformEntry(1, wgpu.ShaderStageFragment),
			uniformEntry(2, vertexFragment),
			textureEntry(3, wgpu.TextureSampleTypeDepth),
			samplerEntry(4, wgpu.SamplerBindingTypeComparison),
		},
	}
}

// meshLayoutDescriptor describes group 1 of both pipelines.
func meshLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "Mesh Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, vertexFragment),
			uniformEntry(1, wgpu.ShaderStageFragment),
			textureEntry(2, wgpu.TextureSampleTypeFloat),
			samplerEntry(3, wgpu.SamplerBindingTypeFiltering),
		},
	}
}

func shadowFrameLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label:   "Shadow Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex)},
	}
}
