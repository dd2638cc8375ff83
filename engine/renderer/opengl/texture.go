package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func (r *OpenGLRenderer) TextureCreate(width, height uint32, options metadata.TextureOptions, pixels []uint8) (metadata.TextureHandle, error) {
	if width == 0 || height == 0 {
		return 0, fmt.Errorf("texture %dx%d: %w", width, height, core.ErrInvalidSize)
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(options.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(options.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(options.WrapX))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(options.WrapY))
	gl.TexImage2D(gl.TEXTURE_2D, 0, glInternalFormat(options.InternalFormat), int32(width), int32(height), 0,
		glFormat(options.Format), glDataType(options.DataType), ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	handle := metadata.TextureHandle(tex)
	r.textures[handle] = &glTexture{width: width, height: height, options: options}
	return handle, nil
}

// TextureResize reallocates the storage, the previous content is released.
func (r *OpenGLRenderer) TextureResize(texture metadata.TextureHandle, width, height uint32) error {
	t, ok := r.textures[texture]
	if !ok {
		return fmt.Errorf("texture %d: %w", texture, core.ErrTextureNotFound)
	}
	if width == 0 || height == 0 {
		return core.ErrInvalidSize
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
	gl.TexImage2D(gl.TEXTURE_2D, 0, glInternalFormat(t.options.InternalFormat), int32(width), int32(height), 0,
		glFormat(t.options.Format), glDataType(t.options.DataType), nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	t.width = width
	t.height = height
	return nil
}

func (r *OpenGLRenderer) TextureWriteData(texture metadata.TextureHandle, pixels []uint8) error {
	t, ok := r.textures[texture]
	if !ok {
		return fmt.Errorf("texture %d: %w", texture, core.ErrTextureNotFound)
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.width), int32(t.height),
		glFormat(t.options.Format), glDataType(t.options.DataType), ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (r *OpenGLRenderer) TextureReadData(texture metadata.TextureHandle) ([]uint8, error) {
	t, ok := r.textures[texture]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", texture, core.ErrTextureNotFound)
	}
	out := make([]uint8, int(t.width)*int(t.height)*4)
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(out))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return out, nil
}

func (r *OpenGLRenderer) TextureBind(texture metadata.TextureHandle, slot uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + slot)
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
	r.stats.TextureBinds++
}

func (r *OpenGLRenderer) TextureDestroy(texture metadata.TextureHandle) {
	if _, ok := r.textures[texture]; !ok {
		return
	}
	tex := uint32(texture)
	gl.DeleteTextures(1, &tex)
	delete(r.textures, texture)
}

func (r *OpenGLRenderer) attach(fb uint32, colour metadata.TextureHandle) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, uint32(colour), 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(r.boundTarget))
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer %d status 0x%x: %w", fb, status, core.ErrFramebufferIncomplete)
	}
	return nil
}

func (r *OpenGLRenderer) RenderTargetCreate(colour metadata.TextureHandle) (metadata.FramebufferHandle, error) {
	if _, ok := r.textures[colour]; !ok {
		return 0, fmt.Errorf("render target colour %d: %w", colour, core.ErrFramebufferIncomplete)
	}
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	if err := r.attach(fb, colour); err != nil {
		gl.DeleteFramebuffers(1, &fb)
		return 0, err
	}
	handle := metadata.FramebufferHandle(fb)
	r.targets[handle] = colour
	return handle, nil
}

func (r *OpenGLRenderer) RenderTargetAttach(target metadata.FramebufferHandle, colour metadata.TextureHandle) error {
	if _, ok := r.targets[target]; !ok {
		return fmt.Errorf("render target %d: %w", target, core.ErrFramebufferIncomplete)
	}
	if err := r.attach(uint32(target), colour); err != nil {
		return err
	}
	r.targets[target] = colour
	return nil
}

func (r *OpenGLRenderer) RenderTargetBind(target metadata.FramebufferHandle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(target))
	r.boundTarget = target
	r.stats.TargetBinds++
}

func (r *OpenGLRenderer) RenderTargetDestroy(target metadata.FramebufferHandle) {
	if _, ok := r.targets[target]; !ok {
		return
	}
	if r.boundTarget == target {
		r.RenderTargetBind(metadata.WindowFramebuffer)
	}
	fb := uint32(target)
	gl.DeleteFramebuffers(1, &fb)
	delete(r.targets, target)
}

func (r *OpenGLRenderer) ReadPixels(target metadata.FramebufferHandle) ([]uint8, uint32, uint32, error) {
	width, height := r.framebufferWidth, r.framebufferHeight
	if target != metadata.WindowFramebuffer {
		colour, ok := r.targets[target]
		if !ok {
			return nil, 0, 0, fmt.Errorf("render target %d: %w", target, core.ErrFramebufferIncomplete)
		}
		t := r.textures[colour]
		width, height = t.width, t.height
	}
	out := make([]uint8, int(width)*int(height)*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(target))
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(out))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(r.boundTarget))
	return out, width, height, nil
}
