package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func glBlendFactor(f metadata.BlendFactor) uint32 {
	switch f {
	case metadata.BlendZero:
		return gl.ZERO
	case metadata.BlendOne:
		return gl.ONE
	case metadata.BlendSrcColor:
		return gl.SRC_COLOR
	case metadata.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case metadata.BlendDstColor:
		return gl.DST_COLOR
	case metadata.BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	case metadata.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case metadata.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case metadata.BlendDstAlpha:
		return gl.DST_ALPHA
	case metadata.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	}
	return gl.ONE
}

func glBlendEquation(eq metadata.BlendEquation) uint32 {
	switch eq {
	case metadata.BlendEquationSubtract:
		return gl.FUNC_SUBTRACT
	case metadata.BlendEquationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case metadata.BlendEquationMin:
		return gl.MIN
	case metadata.BlendEquationMax:
		return gl.MAX
	}
	return gl.FUNC_ADD
}

func glFormat(f metadata.TextureFormat) uint32 {
	switch f {
	case metadata.TextureFormatRGB:
		return gl.RGB
	case metadata.TextureFormatRed:
		return gl.RED
	}
	return gl.RGBA
}

func glInternalFormat(f metadata.TextureInternalFormat) int32 {
	switch f {
	case metadata.TextureInternalFormatRGBA16F:
		return gl.RGBA16F
	case metadata.TextureInternalFormatRGBA32F:
		return gl.RGBA32F
	}
	return gl.RGBA8
}

func glDataType(t metadata.TextureDataType) uint32 {
	if t == metadata.TextureDataTypeFloat {
		return gl.FLOAT
	}
	return gl.UNSIGNED_BYTE
}

func glFilter(f metadata.TextureFilter) int32 {
	if f == metadata.TextureFilterModeNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func glWrap(r metadata.TextureRepeat) int32 {
	switch r {
	case metadata.TextureRepeatRepeat:
		return gl.REPEAT
	case metadata.TextureRepeatMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case metadata.TextureRepeatClampToBorder:
		return gl.CLAMP_TO_BORDER
	}
	return gl.CLAMP_TO_EDGE
}

func glUsage(d metadata.DrawType) uint32 {
	switch d {
	case metadata.DrawTypeStatic:
		return gl.STATIC_DRAW
	case metadata.DrawTypeStream:
		return gl.STREAM_DRAW
	}
	return gl.DYNAMIC_DRAW
}

func ptr(data []uint8) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
