package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/material"
	"github.com/Carmen-Shannon/oxy-stage/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

// gpuMesh holds the GPU resources of one mesh.
type gpuMesh struct {
	label      string
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
	uniform    *wgpu.Buffer
	params     *wgpu.Buffer
	texture    *wgpu.Texture
	view       *wgpu.TextureView
	bindGroup  *wgpu.BindGroup
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *slog.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	width         int
	height        int

	msaaTexture  *wgpu.Texture
	msaaView     *wgpu.TextureView
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	frameLayout       *wgpu.BindGroupLayout
	meshLayout        *wgpu.BindGroupLayout
	shadowFrameLayout *wgpu.BindGroupLayout
	litModule         *wgpu.ShaderModule
	shadowModule      *wgpu.ShaderModule
	litPipeline       *wgpu.RenderPipeline
	shadowPipeline    *wgpu.RenderPipeline

	cameraBuf *wgpu.Buffer
	lightBuf  *wgpu.Buffer
	shadowBuf *wgpu.Buffer

	shadowTexture   *wgpu.Texture
	shadowView      *wgpu.TextureView
	shadowSampler   *wgpu.Sampler
	colorSampler    *wgpu.Sampler
	frameBindGroup  *wgpu.BindGroup
	shadowBindGroup *wgpu.BindGroup

	meshes map[uint64]*gpuMesh
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend requests an adapter and device for the surface and creates every
// resource that does not depend on the surface size.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, logger *slog.Logger) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("window has no surface")
	}
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		meshes:      make(map[uint64]*gpuMesh),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Main Device"})
	if err != nil {
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if err := b.createStaticResources(); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// createStaticResources builds the samplers, layouts, uniform buffers, shader modules and the shadow pipeline.
func (b *wgpuRendererBackendImpl) createStaticResources() error {
	var err error

	b.colorSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Color Map Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("creating color sampler: %w", err)
	}

	b.shadowSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("creating comparison sampler: %w", err)
	}

	if b.frameLayout, err = b.device.CreateBindGroupLayout(frameLayoutDescriptor()); err != nil {
		return fmt.Errorf("frame bind group layout: %w", err)
	}
	if b.meshLayout, err = b.device.CreateBindGroupLayout(meshLayoutDescriptor()); err != nil {
		return fmt.Errorf("mesh bind group layout: %w", err)
	}
	if b.shadowFrameLayout, err = b.device.CreateBindGroupLayout(shadowFrameLayoutDescriptor()); err != nil {
		return fmt.Errorf("shadow bind group layout: %w", err)
	}

	var cam camera.GPUCameraUniform
	var shadow light.GPUShadowData
	if b.cameraBuf, err = b.uniformBuffer("Camera Uniform", uint64(cam.Size())); err != nil {
		return err
	}
	if b.lightBuf, err = b.uniformBuffer("Light Uniform", light.LightBufferSize); err != nil {
		return err
	}
	if b.shadowBuf, err = b.uniformBuffer("Shadow Uniform", uint64(shadow.Size())); err != nil {
		return err
	}

	litCode, err := litShaderSource()
	if err != nil {
		return err
	}
	shadowCode, err := shadowShaderSource()
	if err != nil {
		return err
	}

	b.litModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Lit Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: litCode},
	})
	if err != nil {
		return fmt.Errorf("compiling lit shader: %w", err)
	}
	b.shadowModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Shadow Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shadowCode},
	})
	if err != nil {
		return fmt.Errorf("compiling shadow shader: %w", err)
	}

	shadowLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.shadowFrameLayout, b.meshLayout},
	})
	if err != nil {
		return err
	}
	b.shadowPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shadow Pipeline",
		Layout: shadowLayout,
		Vertex: wgpu.VertexState{
			Module:     b.shadowModule,
			EntryPoint: shadowVertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{geometry.VertexBufferLayout()},
		},
		// No fragment shader: depth-only pass
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeFront,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			DepthBias:           2,
			DepthBiasSlopeScale: 2,
			StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fmt.Errorf("creating shadow pipeline: %w", err)
	}
	return nil
}

// createLitPipeline builds the forward pipeline once the surface format is known.
func (b *wgpuRendererBackendImpl) createLitPipeline() error {
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Lit Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.frameLayout, b.meshLayout},
	})
	if err != nil {
		return err
	}
	b.litPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Lit Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     b.litModule,
			EntryPoint: litVertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{geometry.VertexBufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.litModule,
			EntryPoint: litFragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    b.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fmt.Errorf("creating lit pipeline: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) uniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", label, err)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return errors.New("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width, b.height = width, height

	b.releaseAttachments()
	count := uint32(b.sampleCount)
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	if count > 1 {
		// The pass draws into the MSAA texture and resolves into the swapchain image.
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		b.msaaTexture = tex
		if b.msaaView, err = tex.CreateView(nil); err != nil {
			return err
		}
	}

	// Depth sample count must match the color attachment.
	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	b.depthTexture = depth
	if b.depthView, err = depth.CreateView(nil); err != nil {
		return err
	}

	if b.litPipeline == nil {
		return b.createLitPipeline()
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeMailbox:
		b.presentMode = wgpu.PresentModeMailbox
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetShadowSettings(settings light.ShadowSettings) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A 1x1 map keeps the frame bind group valid while shadows are off.
	res := 1
	if settings.Enabled && settings.Resolution > 0 {
		res = settings.Resolution
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Shadow Depth Texture",
		Size:          wgpu.Extent3D{Width: uint32(res), Height: uint32(res), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("creating shadow depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("creating shadow depth view: %w", err)
	}

	frameGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: b.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.lightBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: b.shadowBuf, Size: wgpu.WholeSize},
			{Binding: 3, TextureView: view},
			{Binding: 4, Sampler: b.shadowSampler},
		},
	})
	if err != nil {
		view.Release()
		tex.Release()
		return fmt.Errorf("creating frame bind group: %w", err)
	}

	if b.shadowBindGroup == nil {
		b.shadowBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   "Shadow Bind Group",
			Layout:  b.shadowFrameLayout,
			Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: b.shadowBuf, Size: wgpu.WholeSize}},
		})
		if err != nil {
			frameGroup.Release()
			view.Release()
			tex.Release()
			return fmt.Errorf("creating shadow bind group: %w", err)
		}
	}

	if b.frameBindGroup != nil {
		b.frameBindGroup.Release()
	}
	if b.shadowView != nil {
		b.shadowView.Release()
	}
	if b.shadowTexture != nil {
		b.shadowTexture.Release()
	}
	b.frameBindGroup, b.shadowView, b.shadowTexture = frameGroup, view, tex
	return nil
}

func (b *wgpuRendererBackendImpl) EnsureMesh(id uint64, label string, geo geometry.Geometry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexData, indexData := geo.VertexData(), geo.IndexData()
	if len(vertexData) == 0 || len(indexData) == 0 {
		return fmt.Errorf("mesh %q has no geometry", label)
	}

	m, ok := b.meshes[id]
	if !ok {
		m = &gpuMesh{label: label}
		var err error
		var params material.GPUMaterialParams
		var uniform mesh.GPUMeshUniform
		if m.uniform, err = b.uniformBuffer(label+" Mesh Uniform", uint64(uniform.Size())); err != nil {
			return err
		}
		if m.params, err = b.uniformBuffer(label+" Material Params", uint64(params.Size())); err != nil {
			m.uniform.Release()
			return err
		}
		b.meshes[id] = m
	}

	vertex, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	index, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertex.Release()
		return err
	}
	b.queue.WriteBuffer(vertex, 0, vertexData)
	b.queue.WriteBuffer(index, 0, indexData)

	if m.vertex != nil {
		m.vertex.Release()
	}
	if m.index != nil {
		m.index.Release()
	}
	m.vertex, m.index = vertex, index
	m.indexCount = uint32(len(indexData) / 4)
	return nil
}

func (b *wgpuRendererBackendImpl) UploadTexture(id uint64, tex *common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.meshes[id]
	if !ok {
		return fmt.Errorf("unknown mesh %d", id)
	}
	if !tex.Valid() {
		return fmt.Errorf("invalid texture data from %q", tex.Source)
	}

	size := wgpu.Extent3D{Width: tex.Width, Height: tex.Height, DepthOrArrayLayers: 1}
	gpuTex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         m.label + " Color Map",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  gpuTex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		tex.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  tex.Width * 4,
			RowsPerImage: tex.Height,
		},
		&size,
	)
	view, err := gpuTex.CreateView(nil)
	if err != nil {
		gpuTex.Release()
		return err
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  m.label + " Bind Group",
		Layout: b.meshLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.uniform, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.params, Size: wgpu.WholeSize},
			{Binding: 2, TextureView: view},
			{Binding: 3, Sampler: b.colorSampler},
		},
	})
	if err != nil {
		view.Release()
		gpuTex.Release()
		return err
	}

	if m.bindGroup != nil {
		m.bindGroup.Release()
	}
	if m.view != nil {
		m.view.Release()
	}
	if m.texture != nil {
		m.texture.Release()
	}
	m.bindGroup, m.view, m.texture = group, view, gpuTex
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseMesh(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.meshes[id]
	if !ok {
		return
	}
	delete(b.meshes, id)
	releaseMesh(m)
}

func releaseMesh(m *gpuMesh) {
	if m.bindGroup != nil {
		m.bindGroup.Release()
	}
	if m.view != nil {
		m.view.Release()
	}
	if m.texture != nil {
		m.texture.Release()
	}
	for _, buf := range []*wgpu.Buffer{m.vertex, m.index, m.uniform, m.params} {
		if buf != nil {
			buf.Release()
		}
	}
}

func (b *wgpuRendererBackendImpl) DrawFrame(f *Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.litPipeline == nil || b.frameBindGroup == nil || b.depthView == nil {
		return errors.New("surface is not configured")
	}

	b.queue.WriteBuffer(b.cameraBuf, 0, f.Camera)
	b.queue.WriteBuffer(b.lightBuf, 0, f.Lights)
	b.queue.WriteBuffer(b.shadowBuf, 0, f.Shadow)

	draws := make([]*gpuMesh, 0, len(f.Draws))
	casters := make([]*gpuMesh, 0, len(f.Draws))
	for _, d := range f.Draws {
		m, ok := b.meshes[d.ID]
		if !ok || m.bindGroup == nil || m.vertex == nil {
			continue
		}
		b.queue.WriteBuffer(m.uniform, 0, d.Mesh)
		b.queue.WriteBuffer(m.params, 0, d.Material)
		draws = append(draws, m)
		if d.CastShadow {
			casters = append(casters, m)
		}
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	if f.Shadows {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            b.shadowView,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		})
		pass.SetPipeline(b.shadowPipeline)
		pass.SetBindGroup(0, b.shadowBindGroup, nil)
		for _, m := range casters {
			drawMesh(pass, m)
		}
		pass.End()
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquiring surface texture: %w", err)
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	color := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(f.Clear[0]), G: float64(f.Clear[1]), B: float64(f.Clear[2]), A: float64(f.Clear[3]),
		},
	}
	if b.msaaView != nil {
		color.View = b.msaaView
		color.ResolveTarget = view
		color.StoreOp = wgpu.StoreOpDiscard
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	pass.SetPipeline(b.litPipeline)
	pass.SetBindGroup(0, b.frameBindGroup, nil)
	for _, m := range draws {
		drawMesh(pass, m)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func drawMesh(pass *wgpu.RenderPassEncoder, m *gpuMesh) {
	pass.SetBindGroup(1, m.bindGroup, nil)
	pass.SetVertexBuffer(0, m.vertex, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(m.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.indexCount, 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaView != nil {
		b.msaaView.Release()
		b.msaaView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthView != nil {
		b.depthView.Release()
		b.depthView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, m := range b.meshes {
		releaseMesh(m)
		delete(b.meshes, id)
	}
	b.releaseAttachments()

	if b.frameBindGroup != nil {
		b.frameBindGroup.Release()
	}
	if b.shadowBindGroup != nil {
		b.shadowBindGroup.Release()
	}
	if b.shadowView != nil {
		b.shadowView.Release()
	}
	if b.shadowTexture != nil {
		b.shadowTexture.Release()
	}
	if b.colorSampler != nil {
		b.colorSampler.Release()
	}
	if b.shadowSampler != nil {
		b.shadowSampler.Release()
	}
	for _, buf := range []*wgpu.Buffer{b.cameraBuf, b.lightBuf, b.shadowBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	for _, p := range []*wgpu.RenderPipeline{b.litPipeline, b.shadowPipeline} {
		if p != nil {
			p.Release()
		}
	}
	for _, m := range []*wgpu.ShaderModule{b.litModule, b.shadowModule} {
		if m != nil {
			m.Release()
		}
	}
	for _, l := range []*wgpu.BindGroupLayout{b.frameLayout, b.meshLayout, b.shadowFrameLayout} {
		if l != nil {
			l.Release()
		}
	}
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
