package soft

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// factor returns the per channel multiplier. The alpha lane is the one used
// when the factor is applied to the alpha channel.
func factor(f metadata.BlendFactor, src, dst math.Vec4) math.Vec4 {
	switch f {
	case metadata.BlendZero:
		return math.NewVec4Zero()
	case metadata.BlendOne:
		return math.NewVec4One()
	case metadata.BlendSrcColor:
		return src
	case metadata.BlendOneMinusSrcColor:
		return math.NewVec4One().Sub(src)
	case metadata.BlendDstColor:
		return dst
	case metadata.BlendOneMinusDstColor:
		return math.NewVec4One().Sub(dst)
	case metadata.BlendSrcAlpha:
		return math.NewVec4(src.W, src.W, src.W, src.W)
	case metadata.BlendOneMinusSrcAlpha:
		a := 1 - src.W
		return math.NewVec4(a, a, a, a)
	case metadata.BlendDstAlpha:
		return math.NewVec4(dst.W, dst.W, dst.W, dst.W)
	case metadata.BlendOneMinusDstAlpha:
		a := 1 - dst.W
		return math.NewVec4(a, a, a, a)
	}
	return math.NewVec4One()
}

func equation(eq metadata.BlendEquation, s, sf, d, df float32) float32 {
	switch eq {
	case metadata.BlendEquationSubtract:
		return s*sf - d*df
	case metadata.BlendEquationReverseSubtract:
		return d*df - s*sf
	case metadata.BlendEquationMin:
		return math32.Min(s, d)
	case metadata.BlendEquationMax:
		return math32.Max(s, d)
	default:
		return s*sf + d*df
	}
}

/**
 * @brief Combines a fragment with the destination texel using separate colour
 * and alpha state.
 */
func blend(p metadata.BlendParams, src, dst math.Vec4) math.Vec4 {
	srgb := factor(p.SrcRGB, src, dst)
	drgb := factor(p.DstRGB, src, dst)
	sa := factor(p.SrcAlpha, src, dst).W
	da := factor(p.DstAlpha, src, dst).W

	return math.Vec4{
		X: equation(p.RGBEquation, src.X, srgb.X, dst.X, drgb.X),
		Y: equation(p.RGBEquation, src.Y, srgb.Y, dst.Y, drgb.Y),
		Z: equation(p.RGBEquation, src.Z, srgb.Z, dst.Z, drgb.Z),
		W: equation(p.AlphaEquation, src.W, sa, dst.W, da),
	}
}

func clamp01(c math.Vec4) math.Vec4 {
	return math.Vec4{
		X: math.Clamp(c.X, 0, 1),
		Y: math.Clamp(c.Y, 0, 1),
		Z: math.Clamp(c.Z, 0, 1),
		W: math.Clamp(c.W, 0, 1),
	}
}
