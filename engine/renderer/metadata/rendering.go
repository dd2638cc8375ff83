package metadata

import (
	"unsafe"

	"github.com/spaghettifunk/anima2d/engine/math"
)

/**
 * @brief Identifies a byte layout together with its GPU attribute binding.
 */
type LayoutID uint8

const (
	/** @brief Plain triangle list of Vertex. */
	LayoutVertex LayoutID = iota
	/** @brief Instanced quads, one SpriteInstance per quad. */
	LayoutSprite
	LayoutCount
)

func (l LayoutID) String() string {
	switch l {
	case LayoutVertex:
		return "vertex"
	case LayoutSprite:
		return "sprite"
	default:
		return "unknown"
	}
}

// Stride returns the size in bytes of one unit of the layout.
func (l LayoutID) Stride() uint32 {
	switch l {
	case LayoutVertex:
		return uint32(unsafe.Sizeof(Vertex{}))
	case LayoutSprite:
		return uint32(unsafe.Sizeof(SpriteInstance{}))
	default:
		return 0
	}
}

// Instanced reports whether one unit of the layout is an instance rather than a vertex.
func (l LayoutID) Instanced() bool {
	return l == LayoutSprite
}

/**
 * @brief Represents a single vertex in 2D space.
 */
type Vertex struct {
	/** @brief The position of the vertex */
	Position math.Vec2
	/** @brief The colour of the vertex. */
	Colour math.Vec4
	/** @brief The texture coordinate of the vertex. */
	Texcoord math.Vec2
}

/**
 * @brief One instanced quad. The unit quad spans [-0.5, 0.5] and is scaled,
 * rotated and moved into place by the vertex stage.
 */
type SpriteInstance struct {
	Position math.Vec2
	Scale    math.Vec2
	/** @brief Rotation in radians, counter clockwise. */
	Angle float32
	/** @brief Normalized sub rectangle of the texture (u, v, width, height), v = 0 is the image top. */
	TexRect math.Vec4
	Colour  math.Vec4
}

/** @brief Draw stability hint controlling upload and reset policy. */
type DrawType uint8

const (
	/** @brief Contents rewritten every frame. */
	DrawTypeDynamic DrawType = iota
	/** @brief Written once and reused. */
	DrawTypeStatic
	/** @brief Write once, use once. */
	DrawTypeStream
)

func (d DrawType) String() string {
	switch d {
	case DrawTypeStatic:
		return "static"
	case DrawTypeStream:
		return "stream"
	default:
		return "dynamic"
	}
}

/** @brief How many texture slots take part in a batch configuration. */
const MaxBatchTextures = 2

/**
 * @brief Identifies a batch bucket. Comparable, so it is used directly as a map key.
 */
type BatchConfiguration struct {
	Textures [MaxBatchTextures]TextureHandle
	Shader   ShaderID
	DrawType DrawType
}

/** @brief Backend handle of a vertex/instance buffer. */
type BufferHandle uint32

/** @brief Blend factors, mirroring the usual graphics API set. */
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

type BlendEquation uint8

const (
	BlendEquationAdd BlendEquation = iota
	BlendEquationSubtract
	BlendEquationReverseSubtract
	BlendEquationMin
	BlendEquationMax
)

/**
 * @brief Separate colour/alpha blend state applied by a Renderer flush.
 */
type BlendParams struct {
	SrcRGB        BlendFactor
	DstRGB        BlendFactor
	SrcAlpha      BlendFactor
	DstAlpha      BlendFactor
	RGBEquation   BlendEquation
	AlphaEquation BlendEquation
}

// BlendAlpha is straight alpha blending with accumulated coverage.
func BlendAlpha() BlendParams {
	return BlendParams{
		SrcRGB:   BlendSrcAlpha,
		DstRGB:   BlendOneMinusSrcAlpha,
		SrcAlpha: BlendOne,
		DstAlpha: BlendOneMinusSrcAlpha,
	}
}

// BlendAdditiveOverAlpha is used by bloom style combines.
func BlendAdditiveOverAlpha() BlendParams {
	return BlendParams{
		SrcRGB:   BlendOne,
		DstRGB:   BlendOneMinusSrcAlpha,
		SrcAlpha: BlendOne,
		DstAlpha: BlendOneMinusSrcAlpha,
	}
}

// BlendAdditive adds source onto destination.
func BlendAdditive() BlendParams {
	return BlendParams{
		SrcRGB:   BlendOne,
		DstRGB:   BlendOne,
		SrcAlpha: BlendOne,
		DstAlpha: BlendOne,
	}
}

// BlendMultiply multiplies the destination colour by the source colour.
func BlendMultiply() BlendParams {
	return BlendParams{
		SrcRGB:   BlendZero,
		DstRGB:   BlendSrcColor,
		SrcAlpha: BlendOne,
		DstAlpha: BlendZero,
	}
}

// BlendReplace overwrites the destination.
func BlendReplace() BlendParams {
	return BlendParams{
		SrcRGB:   BlendOne,
		DstRGB:   BlendZero,
		SrcAlpha: BlendOne,
		DstAlpha: BlendZero,
	}
}

/**
 * @brief Per frame values passed explicitly to every flush.
 */
type FrameContext struct {
	/** @brief Seconds since the engine started. Uploaded as u_time. */
	Time float32
	/** @brief Seconds since the previous frame. */
	DeltaTime float32
	/** @brief Monotonic frame counter. */
	FrameNumber uint64
}

// VertexBytes views a vertex slice as raw bytes without copying.
func VertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(unsafe.Sizeof(Vertex{})))
}

// SpriteInstanceBytes views an instance slice as raw bytes without copying.
func SpriteInstanceBytes(instances []SpriteInstance) []byte {
	if len(instances) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&instances[0])), len(instances)*int(unsafe.Sizeof(SpriteInstance{})))
}

// BytesAsVertices is the inverse of VertexBytes. data must come from VertexBytes
// (or be 4 byte aligned) and hold at least count vertices.
func BytesAsVertices(data []byte, count uint32) []Vertex {
	if count == 0 || len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*Vertex)(unsafe.Pointer(&data[0])), count)
}

func BytesAsSpriteInstances(data []byte, count uint32) []SpriteInstance {
	if count == 0 || len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*SpriteInstance)(unsafe.Pointer(&data[0])), count)
}
