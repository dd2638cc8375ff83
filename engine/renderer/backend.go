package renderer

import (
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// Backend is an immediate-submission graphics API: buffers, textures and programs
// are bound by handle and every draw executes in call order on the calling thread.
//
// Texture data is tightly packed RGBA8. Row 0 is t = 0: the first row of an
// uploaded image, or the bottom row of rendered content.
type Backend interface {
	Initialize(config *metadata.RendererBackendConfig) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(frame metadata.FrameContext) error
	EndFrame(frame metadata.FrameContext) error

	TextureCreate(width, height uint32, options metadata.TextureOptions, pixels []uint8) (metadata.TextureHandle, error)
	TextureResize(texture metadata.TextureHandle, width, height uint32) error
	TextureWriteData(texture metadata.TextureHandle, pixels []uint8) error
	TextureReadData(texture metadata.TextureHandle) ([]uint8, error)
	TextureBind(texture metadata.TextureHandle, slot uint32)
	TextureDestroy(texture metadata.TextureHandle)

	RenderTargetCreate(colour metadata.TextureHandle) (metadata.FramebufferHandle, error)
	RenderTargetAttach(target metadata.FramebufferHandle, colour metadata.TextureHandle) error
	RenderTargetBind(target metadata.FramebufferHandle)
	RenderTargetDestroy(target metadata.FramebufferHandle)
	// ReadPixels returns the colour content of a framebuffer, 0 being the window.
	ReadPixels(target metadata.FramebufferHandle) (pixels []uint8, width, height uint32, err error)

	Viewport(x, y int32, width, height uint32)
	Clear(colour math.Vec4)
	SetBlend(params metadata.BlendParams)

	ShaderCreate(source *metadata.ShaderSource) (metadata.ProgramHandle, error)
	ShaderDestroy(program metadata.ProgramHandle)
	ShaderUse(program metadata.ProgramHandle)
	SetUniform(program metadata.ProgramHandle, name string, value metadata.UniformValue)
	SetUniformMat4(program metadata.ProgramHandle, name string, value math.Mat4)
	SetSampler(program metadata.ProgramHandle, name string, slot int32)

	// RenderBufferCreate allocates storage for capacity units of the layout.
	RenderBufferCreate(layout metadata.LayoutID, capacity uint32, drawType metadata.DrawType) (metadata.BufferHandle, error)
	RenderBufferLoadRange(buffer metadata.BufferHandle, offset uint32, data []byte) error
	// RenderBufferDraw issues one draw call for the first count units.
	RenderBufferDraw(buffer metadata.BufferHandle, count uint32)
	RenderBufferDestroy(buffer metadata.BufferHandle)

	Stats() metadata.RendererStats
	ResetStats()
}
