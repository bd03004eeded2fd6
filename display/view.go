package display

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/aurora-fx/skyburst/common"
	"github.com/aurora-fx/skyburst/config"
	"github.com/aurora-fx/skyburst/engine/renderer"
	"github.com/aurora-fx/skyburst/engine/renderer/bind_group_provider"
	"github.com/aurora-fx/skyburst/engine/renderer/pipeline"
	"github.com/aurora-fx/skyburst/engine/renderer/shader"
	"github.com/aurora-fx/skyburst/engine/texture"
	"github.com/aurora-fx/skyburst/sim"
)

//go:embed particle_compute.wgsl
var computeShaderSource string

//go:embed particle_draw.wgsl
var drawShaderSource string

const (
	computePipelineKey = "skyburst:particle-compute"
	drawPipelineKey    = "skyburst:particle-draw"

	particleBinding = 0
	frameBinding    = 1
	atlasBinding    = 2
	samplerBinding  = 3

	// frameUniformSize is the byte size of the Frame uniform struct shared by
	// both shaders: playfield vec2 plus five f32 lanes, padded to 32 bytes.
	frameUniformSize = 32

	computeWorkgroupSize = 64
)

// quadVertices is the unit quad every particle instance expands: corner
// offsets in [-0.5, 0.5] interleaved with texture coordinates in [0, 1].
var quadVertices = []float32{
	-0.5, -0.5, 0.0, 0.0,
	0.5, -0.5, 1.0, 0.0,
	0.5, 0.5, 1.0, 1.0,
	-0.5, 0.5, 0.0, 1.0,
}

var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

// View is the firework render stage: it packs the live population into the
// GPU particle buffer, dispatches the integration compute pass, and draws one
// instanced quad per record. It implements the engine's Stage interface.
type View struct {
	r      renderer.Renderer
	mu     sync.Mutex // guards cfg; SetConfig may race the frame loop
	cfg    config.Config
	sync   *Synchronizer
	loader texture.Loader

	computeProvider bind_group_provider.BindGroupProvider
	drawProvider    bind_group_provider.BindGroupProvider
	meshProvider    bind_group_provider.BindGroupProvider

	active  bool
	count   int // live record count from the latest pack
	uniform [frameUniformSize]byte
}

// NewView creates the render stage: shaders, pipelines, the shared particle
// storage buffer, the frame uniform, the three-slot sprite atlas, and the
// instanced quad mesh. The particle buffer is sized for cfg.MaxParticles and
// never resized.
//
// Parameters:
//   - r: the renderer to register pipelines and resources with
//   - cfg: the display configuration (capacity, playfield size)
//   - loader: the sprite loader polled each frame, may be nil
//
// Returns:
//   - *View: the ready stage
//   - error: an error if GPU resource creation fails
func NewView(r renderer.Renderer, cfg config.Config, loader texture.Loader) (*View, error) {
	v := &View{
		r:      r,
		cfg:    cfg,
		sync:   NewSynchronizer(cfg.MaxParticles),
		loader: loader,
		active: true,
	}

	bufferSize := uint64(v.sync.Capacity() * GPUParticleStride)

	computeLayout := wgpu.BindGroupLayoutDescriptor{
		Label: "Particle Compute Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    particleBinding,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeStorage,
					MinBindingSize: bufferSize,
				},
			},
			{
				Binding:    frameBinding,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: frameUniformSize,
				},
			},
		},
	}

	// The draw layout entries split across the vertex and fragment shaders;
	// the backend merges them back into this exact set when it builds the
	// render pipeline layout, so the draw provider uses the full list.
	drawLayoutEntries := []wgpu.BindGroupLayoutEntry{
		{
			Binding:    particleBinding,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: bufferSize,
			},
		},
		{
			Binding:    frameBinding,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: frameUniformSize,
			},
		},
		{
			Binding:    atlasBinding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2DArray,
			},
		},
		{
			Binding:    samplerBinding,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		},
	}

	quadLayout := wgpu.VertexBufferLayout{
		ArrayStride: 16,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	}

	computeShader := shader.NewShader(computePipelineKey, shader.ShaderTypeCompute, computeShaderSource,
		shader.WithEntryPoint("cs_main"),
		shader.WithWorkgroupSize(computeWorkgroupSize, 1, 1),
		shader.WithBindGroupLayout(0, computeLayout),
	)
	vertexShader := shader.NewShader(drawPipelineKey+":vertex", shader.ShaderTypeVertex, drawShaderSource,
		shader.WithEntryPoint("vs_main"),
		shader.WithVertexLayouts(quadLayout),
		shader.WithBindGroupLayout(0, wgpu.BindGroupLayoutDescriptor{
			Label:   "Particle Draw Layout",
			Entries: drawLayoutEntries[:2],
		}),
	)
	fragmentShader := shader.NewShader(drawPipelineKey+":fragment", shader.ShaderTypeFragment, drawShaderSource,
		shader.WithEntryPoint("fs_main"),
		shader.WithBindGroupLayout(0, wgpu.BindGroupLayoutDescriptor{
			Label:   "Particle Draw Layout",
			Entries: drawLayoutEntries[2:],
		}),
	)

	err := r.RegisterPipelines(
		pipeline.NewPipeline(computePipelineKey, pipeline.PipelineTypeCompute,
			pipeline.WithComputeShader(computeShader),
		),
		pipeline.NewPipeline(drawPipelineKey, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(vertexShader),
			pipeline.WithFragmentShader(fragmentShader),
			pipeline.WithBlendEnabled(true),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register particle pipelines: %w", err)
	}

	// Compute provider creates the particle storage buffer and frame uniform.
	v.computeProvider = bind_group_provider.NewBindGroupProvider("Particle Compute")
	if err := r.InitBindGroup(v.computeProvider, computeLayout, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to init compute bind group: %w", err)
	}

	// Draw provider shares both buffers so the draw pass reads the records the
	// compute pass advanced this frame.
	v.drawProvider = bind_group_provider.NewBindGroupProvider("Particle Draw",
		bind_group_provider.WithBuffer(particleBinding, v.computeProvider.Buffer(particleBinding)),
		bind_group_provider.WithBuffer(frameBinding, v.computeProvider.Buffer(frameBinding)),
	)

	atlas := make([]byte, 0, texture.SlotCount*texture.SlotSize*texture.SlotSize*4)
	circle := texture.CirclePixels()
	for i := uint32(0); i < texture.SlotCount; i++ {
		// Every slot starts as the circle; gift and avatar load in later.
		atlas = append(atlas, circle...)
	}
	if err := r.InitTextureView(v.drawProvider, atlasBinding, common.TextureStagingData{
		Pixels: atlas,
		Width:  texture.SlotSize,
		Height: texture.SlotSize,
		Layers: texture.SlotCount,
	}); err != nil {
		return nil, fmt.Errorf("failed to init sprite atlas: %w", err)
	}
	if err := r.InitSampler(v.drawProvider, samplerBinding, common.SamplerStagingData{}); err != nil {
		return nil, fmt.Errorf("failed to init atlas sampler: %w", err)
	}
	if err := r.InitBindGroup(v.drawProvider, wgpu.BindGroupLayoutDescriptor{
		Label:   "Particle Draw Layout",
		Entries: drawLayoutEntries,
	}, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to init draw bind group: %w", err)
	}

	v.meshProvider = bind_group_provider.NewBindGroupProvider("Particle Quad")
	if err := r.InitMeshBuffers(v.meshProvider, packFloats(quadVertices), packUints(quadIndices), len(quadIndices)); err != nil {
		return nil, fmt.Errorf("failed to init quad mesh: %w", err)
	}

	return v, nil
}

// Active reports whether the stage is processed this frame.
func (v *View) Active() bool {
	return v.active
}

// SetActive toggles frame processing for this stage.
func (v *View) SetActive(active bool) {
	v.active = active
}

// Renderer returns the renderer this stage encodes work through.
func (v *View) Renderer() renderer.Renderer {
	return v.r
}

// SetConfig replaces the display configuration. The particle buffer capacity
// is fixed at construction; only playfield and physics scalars take effect.
//
// Parameters:
//   - cfg: the new configuration
func (v *View) SetConfig(cfg config.Config) {
	v.mu.Lock()
	v.cfg = cfg
	v.mu.Unlock()
}

// PrepareCompute packs the live population into the storage buffer, refreshes
// the frame uniform, applies any finished sprite loads, and dispatches the
// integration compute pass.
//
// Parameters:
//   - particles: the live particle population in controller iteration order
//   - deltaTime: elapsed time since the previous frame in seconds
func (v *View) PrepareCompute(particles []*sim.Particle, deltaTime float32) {
	v.applySpriteUpdates()

	packed, count := v.sync.Pack(particles)
	v.count = count

	v.packUniform(deltaTime, count)

	writes := []bind_group_provider.BufferWrite{
		{Provider: v.computeProvider, Binding: frameBinding, Offset: 0, Data: v.uniform[:]},
	}
	if count > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: v.computeProvider,
			Binding:  particleBinding,
			Offset:   0,
			Data:     packed,
		})
	}
	v.r.WriteBuffers(writes)

	if count > 0 {
		workgroups := uint32((count + computeWorkgroupSize - 1) / computeWorkgroupSize)
		v.r.DispatchCompute(computePipelineKey, v.computeProvider, [3]uint32{workgroups, 1, 1})
	}
}

// DrawCalls encodes one instanced quad draw covering every packed record.
//
// Returns:
//   - error: an error if the draw pipeline is missing
func (v *View) DrawCalls() error {
	if v.count == 0 {
		return nil
	}
	return v.r.DrawCall(drawPipelineKey, v.meshProvider, uint32(v.count), []bind_group_provider.BindGroupProvider{v.drawProvider})
}

// Resize records the new surface size. The playfield stretches to the full
// surface, so no GPU state changes here; the renderer reconfigures the
// surface itself.
//
// Parameters:
//   - width: the new surface width in pixels
//   - height: the new surface height in pixels
func (v *View) Resize(width, height int) {}

// applySpriteUpdates drains finished sprite loads and writes each into its
// atlas layer. Runs at the frame boundary; decode work already happened on
// the loader's workers.
func (v *View) applySpriteUpdates() {
	if v.loader == nil {
		return
	}
	tex := v.drawProvider.Texture(atlasBinding)
	if tex == nil {
		return
	}
	for _, u := range v.loader.Ready() {
		v.r.WriteTextureLayer(tex, u.Slot, texture.SlotSize, texture.SlotSize, u.Pixels)
	}
}

// packUniform serializes the Frame uniform: playfield extent, frame delta,
// per-step gravity and drag, and the live record count.
func (v *View) packUniform(deltaTime float32, count int) {
	v.mu.Lock()
	cfg := v.cfg
	v.mu.Unlock()

	lanes := [8]float32{
		float32(cfg.PlayfieldWidth),
		float32(cfg.PlayfieldHeight),
		deltaTime,
		float32(cfg.Gravity),
		float32(cfg.Drag),
		float32(count),
		0, 0,
	}
	for i, f := range lanes {
		binary.LittleEndian.PutUint32(v.uniform[i*4:], math.Float32bits(f))
	}
}

// Release frees the GPU resources owned by this stage.
func (v *View) Release() {
	v.meshProvider.Release()
	// The draw provider borrows the compute provider's buffers; detach them
	// before releasing so they are freed exactly once.
	v.drawProvider.SetBuffers(map[int]*wgpu.Buffer{})
	v.drawProvider.Release()
	v.computeProvider.Release()
}

func packFloats(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, f := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func packUints(values []uint32) []byte {
	out := make([]byte, len(values)*4)
	for i, u := range values {
		binary.LittleEndian.PutUint32(out[i*4:], u)
	}
	return out
}
