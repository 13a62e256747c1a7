// Package gpu owns the WebGPU side of the visualizer: device setup, the
// particle and HUD pipelines, per-frame buffer uploads and submission.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/hesom/ParticleSystem/core"
	"github.com/hesom/ParticleSystem/shaders"
)

// Renderer draws one frame at a time from the particle instance records.
// Within a frame, buffer writes are enqueued before the draw submission, so
// the draw always sees the state the simulation produced for that frame.
type Renderer struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue
	config  *wgpu.SurfaceConfiguration

	pipeline        *wgpu.RenderPipeline
	instanceBuf     *wgpu.Buffer
	cameraBuf       *wgpu.Buffer
	cameraBindGroup *wgpu.BindGroup
	capacity        int

	hud *hudResources

	cameraScratch   []byte
	instanceScratch []byte
	textScratch     []byte
}

type hudResources struct {
	atlasView   *wgpu.TextureView
	sampler     *wgpu.Sampler
	pipeline    *wgpu.RenderPipeline
	bindGroup   *wgpu.BindGroup
	vertexBuf   *wgpu.Buffer
	vertexCount uint32
}

// NewRenderer wraps the window into a wgpu surface, picks an adapter and
// device, configures the swapchain and builds the particle pipeline with a
// fixed-capacity instance buffer.
func NewRenderer(window *glfw.Window, capacity int) (*Renderer, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Particle Device",
	})
	if err != nil {
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	queue := device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	config := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, config)

	r := &Renderer{
		surface:  surface,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		config:   config,
		capacity: capacity,
	}

	if err := r.setupParticlePipeline(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) setupParticlePipeline() error {
	shader, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Particle Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticleWGSL},
	})
	if err != nil {
		return fmt.Errorf("compiling particle shader: %w", err)
	}
	defer shader.Release()

	r.pipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Particle Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: instanceStride,
				StepMode:    wgpu.VertexStepModeInstance,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32, Offset: 12, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.config.Format,
				Blend:     alphaBlend(),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("creating particle pipeline: %w", err)
	}

	r.instanceBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Particle Instances",
		Size:  uint64(r.capacity * instanceStride),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("creating instance buffer: %w", err)
	}

	r.cameraBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform",
		Size:  cameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("creating camera buffer: %w", err)
	}

	r.cameraBindGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: r.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.cameraBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("creating camera bind group: %w", err)
	}
	return nil
}

func alphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// EnableHUD uploads the glyph atlas and builds the text pipeline. Called at
// most once, before the first frame.
func (r *Renderer) EnableHUD(atlas *core.TextAtlas) error {
	w := atlas.Image.Bounds().Dx()
	h := atlas.Image.Bounds().Dy()

	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("creating atlas texture: %w", err)
	}
	defer tex.Release()

	err = r.queue.WriteTexture(tex.AsImageCopy(), atlas.Image.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	if err != nil {
		return fmt.Errorf("uploading atlas texture: %w", err)
	}

	hud := &hudResources{}
	hud.atlasView, err = tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating atlas view: %w", err)
	}

	hud.sampler, err = r.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("creating atlas sampler: %w", err)
	}

	shader, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return fmt.Errorf("compiling text shader: %w", err)
	}
	defer shader.Release()

	hud.pipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: textVertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.config.Format,
				Blend:     alphaBlend(),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("creating text pipeline: %w", err)
	}

	hud.bindGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: hud.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: hud.atlasView},
			{Binding: 1, Sampler: hud.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("creating text bind group: %w", err)
	}

	r.hud = hud
	return nil
}

// Resize reconfigures the swapchain. A zero-sized framebuffer keeps the
// previous configuration.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = uint32(width)
	r.config.Height = uint32(height)
	r.surface.Configure(r.adapter, r.device, r.config)
}

// RenderFrame uploads the instance records and camera state, encodes the
// particle pass (plus HUD pass when enabled) and presents. Any failure means
// the frame was not submitted; the caller treats it as fatal.
func (r *Renderer) RenderFrame(view, proj mgl32.Mat4, instances []core.ParticleInstance, hudVerts []core.TextVertex) error {
	viewProj := proj.Mul4(view)
	// Rows of the view rotation are the camera axes in world space.
	right := mgl32.Vec3{view[0], view[4], view[8]}
	up := mgl32.Vec3{view[1], view[5], view[9]}

	r.cameraScratch = packCamera(r.cameraScratch, viewProj, right, up)
	r.queue.WriteBuffer(r.cameraBuf, 0, r.cameraScratch)

	n := len(instances)
	if n > r.capacity {
		n = r.capacity
	}
	r.instanceScratch = packInstances(r.instanceScratch, instances[:n])
	r.queue.WriteBuffer(r.instanceBuf, 0, r.instanceScratch)

	if r.hud != nil {
		r.hud.vertexCount = 0
		if len(hudVerts) > 0 {
			if err := r.uploadTextVertices(hudVerts); err != nil {
				return err
			}
		}
	}

	nextTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquiring surface texture: %w", err)
	}
	defer nextTexture.Release()

	frameView, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating frame view: %w", err)
	}
	defer frameView.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("creating command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       frameView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.01, G: 0.01, B: 0.03, A: 1},
		}},
	})
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.cameraBindGroup, nil)
	pass.SetVertexBuffer(0, r.instanceBuf, 0, r.instanceBuf.GetSize())
	pass.Draw(6, uint32(n), 0, 0)

	if r.hud != nil && r.hud.vertexCount > 0 {
		pass.SetPipeline(r.hud.pipeline)
		pass.SetBindGroup(0, r.hud.bindGroup, nil)
		pass.SetVertexBuffer(0, r.hud.vertexBuf, 0, r.hud.vertexBuf.GetSize())
		pass.Draw(r.hud.vertexCount, 1, 0, 0)
	}

	if err := pass.End(); err != nil {
		return fmt.Errorf("ending render pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finishing encoder: %w", err)
	}
	r.queue.Submit(cmd)
	r.surface.Present()
	return nil
}

func (r *Renderer) uploadTextVertices(verts []core.TextVertex) error {
	r.textScratch = packTextVertices(r.textScratch, verts)
	size := uint64(len(r.textScratch))

	if r.hud.vertexBuf == nil || r.hud.vertexBuf.GetSize() < size {
		if r.hud.vertexBuf != nil {
			r.hud.vertexBuf.Release()
		}
		var err error
		r.hud.vertexBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Text Vertices",
			Size:  size,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("creating text vertex buffer: %w", err)
		}
	}

	r.queue.WriteBuffer(r.hud.vertexBuf, 0, r.textScratch)
	r.hud.vertexCount = uint32(len(verts))
	return nil
}

// Release frees the pipelines, bind groups, buffers and HUD resources. The
// device and surface themselves are torn down with the process.
func (r *Renderer) Release() {
	if r.hud != nil {
		if r.hud.vertexBuf != nil {
			r.hud.vertexBuf.Release()
		}
		r.hud.bindGroup.Release()
		r.hud.pipeline.Release()
		r.hud.sampler.Release()
		r.hud.atlasView.Release()
		r.hud = nil
	}
	r.cameraBindGroup.Release()
	r.pipeline.Release()
	r.instanceBuf.Release()
	r.cameraBuf.Release()
}
