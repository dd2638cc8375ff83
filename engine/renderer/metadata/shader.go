package metadata

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/anima2d/engine/math"
)

/** @brief Stable identifier of a shader inside a registry. Survives hot reloads. */
type ShaderID uint32

/** @brief Backend handle of a linked program. Changes on every reload. */
type ProgramHandle uint32

const InvalidShaderID ShaderID = 0

/** @brief Available uniform types. */
type UniformType int

const (
	UniformTypeFloat UniformType = iota
	UniformTypeInt
	UniformTypeBool
	UniformTypeVec2
	UniformTypeVec3
	UniformTypeVec4
)

func (t UniformType) String() string {
	switch t {
	case UniformTypeFloat:
		return "float"
	case UniformTypeInt:
		return "int"
	case UniformTypeBool:
		return "bool"
	case UniformTypeVec2:
		return "vec2"
	case UniformTypeVec3:
		return "vec3"
	case UniformTypeVec4:
		return "vec4"
	default:
		return "unknown"
	}
}

// UniformTypeFromString maps a GLSL type keyword. The second value is false for
// keywords outside the supported set.
func UniformTypeFromString(s string) (UniformType, bool) {
	switch s {
	case "float":
		return UniformTypeFloat, true
	case "int":
		return UniformTypeInt, true
	case "bool":
		return UniformTypeBool, true
	case "vec2":
		return UniformTypeVec2, true
	case "vec3":
		return UniformTypeVec3, true
	case "vec4":
		return UniformTypeVec4, true
	}
	return 0, false
}

/**
 * @brief A value for one of the supported uniform types. Floats and vectors
 * live in F, ints and bools in I.
 */
type UniformValue struct {
	Type UniformType
	F    [4]float32
	I    int32
}

func UniformFloat(v float32) UniformValue {
	return UniformValue{Type: UniformTypeFloat, F: [4]float32{v}}
}

func UniformInt(v int32) UniformValue {
	return UniformValue{Type: UniformTypeInt, I: v}
}

func UniformBool(v bool) UniformValue {
	u := UniformValue{Type: UniformTypeBool}
	if v {
		u.I = 1
	}
	return u
}

func UniformVec2(v math.Vec2) UniformValue {
	return UniformValue{Type: UniformTypeVec2, F: [4]float32{v.X, v.Y}}
}

func UniformVec3(v math.Vec3) UniformValue {
	return UniformValue{Type: UniformTypeVec3, F: [4]float32{v.X, v.Y, v.Z}}
}

func UniformVec4(v math.Vec4) UniformValue {
	return UniformValue{Type: UniformTypeVec4, F: [4]float32{v.X, v.Y, v.Z, v.W}}
}

func (u UniformValue) Float() float32 { return u.F[0] }
func (u UniformValue) Int() int32     { return u.I }
func (u UniformValue) Bool() bool     { return u.I != 0 }
func (u UniformValue) Vec2() math.Vec2 {
	return math.NewVec2(u.F[0], u.F[1])
}
func (u UniformValue) Vec3() math.Vec3 {
	return math.NewVec3(u.F[0], u.F[1], u.F[2])
}
func (u UniformValue) Vec4() math.Vec4 {
	return math.NewVec4(u.F[0], u.F[1], u.F[2], u.F[3])
}

func (u UniformValue) String() string {
	switch u.Type {
	case UniformTypeInt:
		return fmt.Sprintf("int(%d)", u.I)
	case UniformTypeBool:
		return fmt.Sprintf("bool(%t)", u.Bool())
	case UniformTypeFloat:
		return fmt.Sprintf("float(%g)", u.F[0])
	case UniformTypeVec2:
		return fmt.Sprintf("vec2(%g, %g)", u.F[0], u.F[1])
	case UniformTypeVec3:
		return fmt.Sprintf("vec3(%g, %g, %g)", u.F[0], u.F[1], u.F[2])
	default:
		return fmt.Sprintf("vec4(%g, %g, %g, %g)", u.F[0], u.F[1], u.F[2], u.F[3])
	}
}

/** @brief A uniform found while scanning shader source. */
type UniformDeclaration struct {
	Name  string
	Value UniformValue
}

/** @brief A sampler2D found while scanning shader source. */
type SamplerDeclaration struct {
	Name string
	Slot int32
}

/**
 * @brief The texture slot a sampler is bound to plus the texture
 * currently attached to it (0 when the batch textures are used).
 */
type TextureSlot struct {
	Slot   int32
	Handle TextureHandle
}

/**
 * @brief Everything a backend needs to build a program.
 */
type ShaderSource struct {
	/** @brief The shader name. The software backend resolves its kernel by it. */
	Name string
	/** @brief The Layout the vertex stage consumes. */
	Layout   LayoutID
	Vertex   string
	Fragment string
	/** @brief Sampler names in slot order. */
	Samplers []string
	/** @brief Where the sources came from, empty for embedded builtins. */
	VertexPath   string
	FragmentPath string
	ModTime      time.Time
}
