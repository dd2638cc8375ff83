package soft

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

const maxTextureSlots = 8

type viewport struct {
	x, y          int32
	width, height uint32
}

type framebuffer struct {
	colour metadata.TextureHandle
}

type program struct {
	name     string
	layout   metadata.LayoutID
	kernel   Kernel
	uniforms map[string]metadata.UniformValue
	matrices map[string]math.Mat4
	samplers map[string]int32
}

type buffer struct {
	layout   metadata.LayoutID
	capacity uint32
	drawType metadata.DrawType
	data     []byte
}

var (
	kernelsMu sync.RWMutex
	kernels   = builtinKernels()
)

// RegisterKernel makes a fragment kernel available to programs created with
// the given shader name, so user shaders can run on the software backend.
func RegisterKernel(name string, kernel Kernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	kernels[name] = kernel
}

func lookupKernel(name string) (Kernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := kernels[name]
	return k, ok
}

/**
 * @brief Reference CPU implementation of the renderer backend. It executes
 * every call synchronously and is used headless and by the render tests.
 */
type SoftRenderer struct {
	textures *core.IDPool[surface]
	targets  *core.IDPool[framebuffer]
	programs *core.IDPool[program]
	buffers  *core.IDPool[buffer]

	window *surface
	frame  metadata.FrameContext

	boundTarget  metadata.FramebufferHandle
	boundProgram metadata.ProgramHandle
	slots        [maxTextureSlots]metadata.TextureHandle
	viewport     viewport
	blend        metadata.BlendParams

	stats metadata.RendererStats
}

func New() *SoftRenderer {
	return &SoftRenderer{
		textures: core.NewIDPool[surface](),
		targets:  core.NewIDPool[framebuffer](),
		programs: core.NewIDPool[program](),
		buffers:  core.NewIDPool[buffer](),
		window:   newSurface(1, 1, metadata.DefaultTextureOptions()),
		blend:    metadata.BlendAlpha(),
	}
}

func (r *SoftRenderer) Initialize(config *metadata.RendererBackendConfig) error {
	width, height := config.Width, config.Height
	if width == 0 || height == 0 {
		return fmt.Errorf("software backend %dx%d: %w", width, height, core.ErrInvalidSize)
	}
	r.window = newSurface(width, height, metadata.DefaultTextureOptions())
	r.viewport = viewport{width: width, height: height}
	core.LogInfo("software renderer initialized (%dx%d)", width, height)
	return nil
}

func (r *SoftRenderer) Shutdown() error {
	r.buffers.Each(func(id uint32, _ *buffer) { _ = r.buffers.Release(id) })
	r.programs.Each(func(id uint32, _ *program) { _ = r.programs.Release(id) })
	r.targets.Each(func(id uint32, _ *framebuffer) { _ = r.targets.Release(id) })
	r.textures.Each(func(id uint32, _ *surface) { _ = r.textures.Release(id) })
	return nil
}

func (r *SoftRenderer) Resized(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	r.window.resize(width, height)
	return nil
}

func (r *SoftRenderer) BeginFrame(frame metadata.FrameContext) error {
	r.frame = frame
	return nil
}

func (r *SoftRenderer) EndFrame(frame metadata.FrameContext) error {
	return nil
}

func (r *SoftRenderer) textureSurface(handle metadata.TextureHandle) *surface {
	s, ok := r.textures.Get(uint32(handle))
	if !ok {
		return nil
	}
	return s
}

func (r *SoftRenderer) TextureCreate(width, height uint32, options metadata.TextureOptions, pixels []uint8) (metadata.TextureHandle, error) {
	if width == 0 || height == 0 {
		return 0, fmt.Errorf("texture %dx%d: %w", width, height, core.ErrInvalidSize)
	}
	s := newSurface(width, height, options)
	if pixels != nil {
		if err := s.write(pixels); err != nil {
			return 0, err
		}
	}
	return metadata.TextureHandle(r.textures.Acquire(s)), nil
}

func (r *SoftRenderer) TextureResize(texture metadata.TextureHandle, width, height uint32) error {
	s := r.textureSurface(texture)
	if s == nil {
		return fmt.Errorf("texture %d: %w", texture, core.ErrTextureNotFound)
	}
	if width == 0 || height == 0 {
		return core.ErrInvalidSize
	}
	s.resize(width, height)
	return nil
}

func (r *SoftRenderer) TextureWriteData(texture metadata.TextureHandle, pixels []uint8) error {
	s := r.textureSurface(texture)
	if s == nil {
		return fmt.Errorf("texture %d: %w", texture, core.ErrTextureNotFound)
	}
	return s.write(pixels)
}

func (r *SoftRenderer) TextureReadData(texture metadata.TextureHandle) ([]uint8, error) {
	s := r.textureSurface(texture)
	if s == nil {
		return nil, fmt.Errorf("texture %d: %w", texture, core.ErrTextureNotFound)
	}
	return s.readRGBA8(), nil
}

func (r *SoftRenderer) TextureBind(texture metadata.TextureHandle, slot uint32) {
	if slot >= maxTextureSlots {
		core.LogWarn("texture slot %d out of range", slot)
		return
	}
	r.slots[slot] = texture
	r.stats.TextureBinds++
}

func (r *SoftRenderer) TextureDestroy(texture metadata.TextureHandle) {
	if err := r.textures.Release(uint32(texture)); err != nil {
		core.LogWarn("%s", err)
	}
	for i := range r.slots {
		if r.slots[i] == texture {
			r.slots[i] = 0
		}
	}
}

func (r *SoftRenderer) RenderTargetCreate(colour metadata.TextureHandle) (metadata.FramebufferHandle, error) {
	if r.textureSurface(colour) == nil {
		return 0, fmt.Errorf("render target colour %d: %w", colour, core.ErrFramebufferIncomplete)
	}
	return metadata.FramebufferHandle(r.targets.Acquire(&framebuffer{colour: colour})), nil
}

func (r *SoftRenderer) RenderTargetAttach(target metadata.FramebufferHandle, colour metadata.TextureHandle) error {
	fb, ok := r.targets.Get(uint32(target))
	if !ok || r.textureSurface(colour) == nil {
		return fmt.Errorf("render target %d: %w", target, core.ErrFramebufferIncomplete)
	}
	fb.colour = colour
	return nil
}

func (r *SoftRenderer) RenderTargetBind(target metadata.FramebufferHandle) {
	r.boundTarget = target
	r.stats.TargetBinds++
}

func (r *SoftRenderer) RenderTargetDestroy(target metadata.FramebufferHandle) {
	if r.boundTarget == target {
		r.boundTarget = metadata.WindowFramebuffer
	}
	if err := r.targets.Release(uint32(target)); err != nil {
		core.LogWarn("%s", err)
	}
}

func (r *SoftRenderer) targetSurface(target metadata.FramebufferHandle) *surface {
	if target == metadata.WindowFramebuffer {
		return r.window
	}
	fb, ok := r.targets.Get(uint32(target))
	if !ok {
		return nil
	}
	return r.textureSurface(fb.colour)
}

func (r *SoftRenderer) ReadPixels(target metadata.FramebufferHandle) ([]uint8, uint32, uint32, error) {
	s := r.targetSurface(target)
	if s == nil {
		return nil, 0, 0, fmt.Errorf("render target %d: %w", target, core.ErrFramebufferIncomplete)
	}
	return s.readRGBA8(), s.width, s.height, nil
}

func (r *SoftRenderer) Viewport(x, y int32, width, height uint32) {
	r.viewport = viewport{x: x, y: y, width: width, height: height}
}

func (r *SoftRenderer) Clear(colour math.Vec4) {
	s := r.targetSurface(r.boundTarget)
	if s == nil {
		core.LogWarn("clear: no surface bound to target %d", r.boundTarget)
		return
	}
	s.clear(colour)
	r.stats.Clears++
}

func (r *SoftRenderer) SetBlend(params metadata.BlendParams) {
	r.blend = params
}

func (r *SoftRenderer) ShaderCreate(source *metadata.ShaderSource) (metadata.ProgramHandle, error) {
	kernel, ok := lookupKernel(source.Name)
	if !ok {
		return 0, fmt.Errorf("shader `%s`: %w", source.Name, core.ErrNoKernel)
	}
	p := &program{
		name:     source.Name,
		layout:   source.Layout,
		kernel:   kernel,
		uniforms: make(map[string]metadata.UniformValue),
		matrices: make(map[string]math.Mat4),
		samplers: make(map[string]int32, len(source.Samplers)),
	}
	for i, s := range source.Samplers {
		p.samplers[s] = int32(i)
	}
	return metadata.ProgramHandle(r.programs.Acquire(p)), nil
}

func (r *SoftRenderer) ShaderDestroy(prog metadata.ProgramHandle) {
	if r.boundProgram == prog {
		r.boundProgram = 0
	}
	if err := r.programs.Release(uint32(prog)); err != nil {
		core.LogWarn("%s", err)
	}
}

func (r *SoftRenderer) ShaderUse(prog metadata.ProgramHandle) {
	r.boundProgram = prog
	r.stats.ShaderBinds++
}

func (r *SoftRenderer) SetUniform(prog metadata.ProgramHandle, name string, value metadata.UniformValue) {
	if p, ok := r.programs.Get(uint32(prog)); ok {
		p.uniforms[name] = value
	}
}

func (r *SoftRenderer) SetUniformMat4(prog metadata.ProgramHandle, name string, value math.Mat4) {
	if p, ok := r.programs.Get(uint32(prog)); ok {
		p.matrices[name] = value
	}
}

func (r *SoftRenderer) SetSampler(prog metadata.ProgramHandle, name string, slot int32) {
	if p, ok := r.programs.Get(uint32(prog)); ok {
		p.samplers[name] = slot
	}
}

func (r *SoftRenderer) RenderBufferCreate(layout metadata.LayoutID, capacity uint32, drawType metadata.DrawType) (metadata.BufferHandle, error) {
	if layout >= metadata.LayoutCount {
		return 0, fmt.Errorf("render buffer: unknown layout %d", layout)
	}
	b := &buffer{
		layout:   layout,
		capacity: capacity,
		drawType: drawType,
		data:     make([]byte, int(capacity)*int(layout.Stride())),
	}
	return metadata.BufferHandle(r.buffers.Acquire(b)), nil
}

func (r *SoftRenderer) RenderBufferLoadRange(buf metadata.BufferHandle, offset uint32, data []byte) error {
	b, ok := r.buffers.Get(uint32(buf))
	if !ok {
		return fmt.Errorf("render buffer %d not found", buf)
	}
	if int(offset)+len(data) > len(b.data) {
		return fmt.Errorf("render buffer %d: upload of %d bytes at %d: %w", buf, len(data), offset, core.ErrCapacityExceeded)
	}
	copy(b.data[offset:], data)
	r.stats.BufferUploads++
	return nil
}

/**
 * @brief Draws the first count units of the buffer with the bound program,
 * target, viewport, blend state and textures.
 */
func (r *SoftRenderer) RenderBufferDraw(buf metadata.BufferHandle, count uint32) {
	b, ok := r.buffers.Get(uint32(buf))
	if !ok {
		core.LogWarn("draw: render buffer %d not found", buf)
		return
	}
	p, ok := r.programs.Get(uint32(r.boundProgram))
	if !ok {
		core.LogWarn("draw: no program bound")
		return
	}
	target := r.targetSurface(r.boundTarget)
	if target == nil {
		core.LogWarn("draw: no surface bound to target %d", r.boundTarget)
		return
	}
	count = min(count, b.capacity)
	r.stats.DrawCalls++

	st := r.newRasterState(p, target)
	m, ok := p.matrices["u_view_projection"]
	if !ok {
		m = math.NewMat4Identity()
	}

	switch b.layout {
	case metadata.LayoutVertex:
		r.stats.Vertices += int(count)
		vertices := metadata.BytesAsVertices(b.data, count)
		for i := 0; i+2 < len(vertices); i += 3 {
			st.triangle(st.vertexStage(m, vertices[i]), st.vertexStage(m, vertices[i+1]), st.vertexStage(m, vertices[i+2]))
		}
	case metadata.LayoutSprite:
		r.stats.Instances += int(count)
		r.stats.Vertices += int(count) * len(unitQuad)
		for _, inst := range metadata.BytesAsSpriteInstances(b.data, count) {
			for i := 0; i < len(unitQuad); i += 3 {
				st.triangle(st.spriteStage(m, inst, unitQuad[i]), st.spriteStage(m, inst, unitQuad[i+1]), st.spriteStage(m, inst, unitQuad[i+2]))
			}
		}
	}
}

func (r *SoftRenderer) RenderBufferDestroy(buf metadata.BufferHandle) {
	if err := r.buffers.Release(uint32(buf)); err != nil {
		core.LogWarn("%s", err)
	}
}

func (r *SoftRenderer) Stats() metadata.RendererStats {
	return r.stats
}

func (r *SoftRenderer) ResetStats() {
	r.stats = metadata.RendererStats{}
}
