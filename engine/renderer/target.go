package renderer

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// RenderTarget is a sized drawable surface.
type RenderTarget interface {
	GetHandle() metadata.FramebufferHandle
	GetSize() (uint32, uint32)
	Bind()
	// Clear binds the target and clears the whole surface.
	Clear(colour math.Vec4)
}

// WindowTarget is the on-screen surface. It lives for the whole run and follows window resizes.
type WindowTarget struct {
	backend Backend
	width   uint32
	height  uint32
}

func NewWindowTarget(backend Backend, width, height uint32) *WindowTarget {
	return &WindowTarget{
		backend: backend,
		width:   width,
		height:  height,
	}
}

func (w *WindowTarget) GetHandle() metadata.FramebufferHandle {
	return metadata.WindowFramebuffer
}

func (w *WindowTarget) GetSize() (uint32, uint32) {
	return w.width, w.height
}

func (w *WindowTarget) Bind() {
	w.backend.RenderTargetBind(metadata.WindowFramebuffer)
}

func (w *WindowTarget) Clear(colour math.Vec4) {
	clearTarget(w.backend, w, colour)
}

// Resize records the new surface size. Minimized windows report zero and are ignored.
func (w *WindowTarget) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		core.LogDebug("window target resize to %dx%d ignored", width, height)
		return
	}
	w.width = width
	w.height = height
}

/**
 * @brief An off-screen render target owning a readable colour texture.
 */
type FrameBuffer struct {
	backend Backend
	handle  metadata.FramebufferHandle
	texture metadata.TextureHandle
	options metadata.TextureOptions
	width   uint32
	height  uint32
}

// NewFrameBuffer allocates the colour texture and the framebuffer. An incomplete
// framebuffer is returned as an error and the partial resources are released.
func NewFrameBuffer(backend Backend, width, height uint32, options metadata.TextureOptions) (*FrameBuffer, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("framebuffer %dx%d: %w", width, height, core.ErrInvalidSize)
	}
	tex, err := backend.TextureCreate(width, height, options, nil)
	if err != nil {
		return nil, err
	}
	handle, err := backend.RenderTargetCreate(tex)
	if err != nil {
		backend.TextureDestroy(tex)
		return nil, fmt.Errorf("framebuffer %dx%d: %w", width, height, err)
	}
	return &FrameBuffer{
		backend: backend,
		handle:  handle,
		texture: tex,
		options: options,
		width:   width,
		height:  height,
	}, nil
}

func (f *FrameBuffer) GetHandle() metadata.FramebufferHandle {
	return f.handle
}

func (f *FrameBuffer) GetSize() (uint32, uint32) {
	return f.width, f.height
}

func (f *FrameBuffer) GetTexture() metadata.TextureHandle {
	return f.texture
}

func (f *FrameBuffer) GetOptions() metadata.TextureOptions {
	return f.options
}

func (f *FrameBuffer) Bind() {
	f.backend.RenderTargetBind(f.handle)
}

func (f *FrameBuffer) Clear(colour math.Vec4) {
	clearTarget(f.backend, f, colour)
}

// Resize reallocates the colour texture storage and reattaches it. Zero sizes are
// rejected without touching the current storage.
func (f *FrameBuffer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogWarn("framebuffer resize to %dx%d rejected", width, height)
		return core.ErrInvalidSize
	}
	if width == f.width && height == f.height {
		return nil
	}
	if err := f.backend.TextureResize(f.texture, width, height); err != nil {
		return err
	}
	if err := f.backend.RenderTargetAttach(f.handle, f.texture); err != nil {
		return err
	}
	f.width = width
	f.height = height
	return nil
}

// ReadPixels returns the RGBA8 content, bottom row first.
func (f *FrameBuffer) ReadPixels() ([]uint8, error) {
	return f.backend.TextureReadData(f.texture)
}

func (f *FrameBuffer) Destroy() {
	if f.handle != 0 {
		f.backend.RenderTargetDestroy(f.handle)
		f.handle = 0
	}
	if f.texture != 0 {
		f.backend.TextureDestroy(f.texture)
		f.texture = 0
	}
}

func clearTarget(backend Backend, target RenderTarget, colour math.Vec4) {
	w, h := target.GetSize()
	backend.RenderTargetBind(target.GetHandle())
	backend.Viewport(0, 0, w, h)
	backend.Clear(colour)
}
