package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

var _ renderer.Backend = (*OpenGLRenderer)(nil)

type glTexture struct {
	width   uint32
	height  uint32
	options metadata.TextureOptions
}

/**
 * @brief OpenGL 3.3 core implementation of the renderer backend. A context
 * must be current on the calling thread before Initialize.
 */
type OpenGLRenderer struct {
	FrameNumber uint64

	framebufferWidth  uint32
	framebufferHeight uint32

	quadVbo  uint32
	textures map[metadata.TextureHandle]*glTexture
	targets  map[metadata.FramebufferHandle]metadata.TextureHandle
	programs map[metadata.ProgramHandle]*glProgram
	buffers  map[metadata.BufferHandle]*glBuffer

	boundTarget  metadata.FramebufferHandle
	boundProgram metadata.ProgramHandle

	stats metadata.RendererStats
}

func New() *OpenGLRenderer {
	return &OpenGLRenderer{
		textures: make(map[metadata.TextureHandle]*glTexture),
		targets:  make(map[metadata.FramebufferHandle]metadata.TextureHandle),
		programs: make(map[metadata.ProgramHandle]*glProgram),
		buffers:  make(map[metadata.BufferHandle]*glBuffer),
	}
}

func (r *OpenGLRenderer) Initialize(config *metadata.RendererBackendConfig) error {
	if err := gl.Init(); err != nil {
		core.LogFatal("failed to initialize OpenGL: %s", err)
		return err
	}
	core.LogInfo("OpenGL version %s, renderer %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	r.framebufferWidth = config.Width
	r.framebufferHeight = config.Height

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	r.createQuad()
	r.SetBlend(metadata.BlendAlpha())
	r.Viewport(0, 0, config.Width, config.Height)
	return nil
}

func (r *OpenGLRenderer) Shutdown() error {
	for h, b := range r.buffers {
		b.destroy()
		delete(r.buffers, h)
	}
	for h := range r.programs {
		gl.DeleteProgram(uint32(h))
		delete(r.programs, h)
	}
	for h := range r.targets {
		fb := uint32(h)
		gl.DeleteFramebuffers(1, &fb)
		delete(r.targets, h)
	}
	for h := range r.textures {
		tex := uint32(h)
		gl.DeleteTextures(1, &tex)
		delete(r.textures, h)
	}
	if r.quadVbo != 0 {
		gl.DeleteBuffers(1, &r.quadVbo)
		r.quadVbo = 0
	}
	core.LogInfo("OpenGL renderer shutdown")
	return nil
}

func (r *OpenGLRenderer) Resized(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	r.framebufferWidth = width
	r.framebufferHeight = height
	return nil
}

func (r *OpenGLRenderer) BeginFrame(frame metadata.FrameContext) error {
	r.FrameNumber = frame.FrameNumber
	return nil
}

func (r *OpenGLRenderer) EndFrame(frame metadata.FrameContext) error {
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		core.LogError("OpenGL error 0x%x during frame %d", errCode, frame.FrameNumber)
	}
	return nil
}

func (r *OpenGLRenderer) Viewport(x, y int32, width, height uint32) {
	gl.Viewport(x, y, int32(width), int32(height))
}

func (r *OpenGLRenderer) Clear(colour math.Vec4) {
	gl.ClearColor(colour.X, colour.Y, colour.Z, colour.W)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	r.stats.Clears++
}

func (r *OpenGLRenderer) SetBlend(p metadata.BlendParams) {
	gl.BlendFuncSeparate(glBlendFactor(p.SrcRGB), glBlendFactor(p.DstRGB), glBlendFactor(p.SrcAlpha), glBlendFactor(p.DstAlpha))
	gl.BlendEquationSeparate(glBlendEquation(p.RGBEquation), glBlendEquation(p.AlphaEquation))
}

func (r *OpenGLRenderer) ShaderCreate(source *metadata.ShaderSource) (metadata.ProgramHandle, error) {
	handle, err := linkProgram(source)
	if err != nil {
		return 0, err
	}
	p := &glProgram{name: source.Name, locations: make(map[string]int32)}
	prog := metadata.ProgramHandle(handle)
	r.programs[prog] = p

	gl.UseProgram(handle)
	for slot, sampler := range source.Samplers {
		if loc := p.location(handle, sampler); loc >= 0 {
			gl.Uniform1i(loc, int32(slot))
		}
	}
	gl.UseProgram(uint32(r.boundProgram))
	return prog, nil
}

func (r *OpenGLRenderer) ShaderDestroy(prog metadata.ProgramHandle) {
	if _, ok := r.programs[prog]; !ok {
		return
	}
	if r.boundProgram == prog {
		gl.UseProgram(0)
		r.boundProgram = 0
	}
	gl.DeleteProgram(uint32(prog))
	delete(r.programs, prog)
}

func (r *OpenGLRenderer) ShaderUse(prog metadata.ProgramHandle) {
	gl.UseProgram(uint32(prog))
	r.boundProgram = prog
	r.stats.ShaderBinds++
}

// use makes prog current, uniforms are only uploaded to the bound program.
func (r *OpenGLRenderer) use(prog metadata.ProgramHandle) (*glProgram, bool) {
	p, ok := r.programs[prog]
	if !ok {
		return nil, false
	}
	if r.boundProgram != prog {
		r.ShaderUse(prog)
	}
	return p, true
}

func (r *OpenGLRenderer) SetUniform(prog metadata.ProgramHandle, name string, value metadata.UniformValue) {
	p, ok := r.use(prog)
	if !ok {
		return
	}
	if loc := p.location(uint32(prog), name); loc >= 0 {
		uploadUniform(loc, value)
	}
}

func (r *OpenGLRenderer) SetUniformMat4(prog metadata.ProgramHandle, name string, value math.Mat4) {
	p, ok := r.use(prog)
	if !ok {
		return
	}
	if loc := p.location(uint32(prog), name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &value.Data[0])
	}
}

func (r *OpenGLRenderer) SetSampler(prog metadata.ProgramHandle, name string, slot int32) {
	p, ok := r.use(prog)
	if !ok {
		return
	}
	if loc := p.location(uint32(prog), name); loc >= 0 {
		gl.Uniform1i(loc, slot)
	}
}

func (r *OpenGLRenderer) RenderBufferCreate(layout metadata.LayoutID, capacity uint32, drawType metadata.DrawType) (metadata.BufferHandle, error) {
	if layout >= metadata.LayoutCount {
		return 0, fmt.Errorf("render buffer: unknown layout %d", layout)
	}
	b := r.newBuffer(layout, capacity, drawType)
	handle := metadata.BufferHandle(b.vbo)
	r.buffers[handle] = b
	return handle, nil
}

func (r *OpenGLRenderer) RenderBufferLoadRange(buf metadata.BufferHandle, offset uint32, data []byte) error {
	b, ok := r.buffers[buf]
	if !ok {
		return fmt.Errorf("render buffer %d not found", buf)
	}
	if int(offset)+len(data) > int(b.capacity)*int(b.layout.Stride()) {
		return fmt.Errorf("render buffer %d: upload of %d bytes at %d: %w", buf, len(data), offset, core.ErrCapacityExceeded)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, int(offset), len(data), gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	r.stats.BufferUploads++
	return nil
}

func (r *OpenGLRenderer) RenderBufferDraw(buf metadata.BufferHandle, count uint32) {
	b, ok := r.buffers[buf]
	if !ok {
		core.LogWarn("draw: render buffer %d not found", buf)
		return
	}
	count = min(count, b.capacity)
	b.draw(count)

	r.stats.DrawCalls++
	if b.layout == metadata.LayoutSprite {
		r.stats.Instances += int(count)
		r.stats.Vertices += int(count) * len(quadCorners) / 2
	} else {
		r.stats.Vertices += int(count)
	}
}

func (r *OpenGLRenderer) RenderBufferDestroy(buf metadata.BufferHandle) {
	if b, ok := r.buffers[buf]; ok {
		b.destroy()
		delete(r.buffers, buf)
	}
}

func (r *OpenGLRenderer) Stats() metadata.RendererStats {
	return r.stats
}

func (r *OpenGLRenderer) ResetStats() {
	r.stats = metadata.RendererStats{}
}
