package soft

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/** @brief Interpolated vertex outputs reaching a fragment. */
type Fragment struct {
	Colour   math.Vec4
	Texcoord math.Vec2
}

/**
 * @brief Kernel is the fragment stage of a software program. It is resolved by
 * shader name when the program is created.
 */
type Kernel func(ctx *Context, in Fragment) math.Vec4

/**
 * @brief State visible to a kernel: the program uniforms and the textures
 * bound to its samplers.
 */
type Context struct {
	Uniforms map[string]metadata.UniformValue
	Time     float32
	renderer *SoftRenderer
	samplers map[string]int32
}

func (c *Context) surfaceFor(sampler string) *surface {
	slot, ok := c.samplers[sampler]
	if !ok || slot < 0 || int(slot) >= len(c.renderer.slots) {
		return nil
	}
	return c.renderer.textureSurface(c.renderer.slots[slot])
}

// Sample reads the texture bound to a sampler, transparent black when unbound.
func (c *Context) Sample(sampler string, uv math.Vec2) math.Vec4 {
	s := c.surfaceFor(sampler)
	if s == nil {
		return math.NewVec4Zero()
	}
	return s.sample(uv)
}

// TexelSize returns 1 / textureSize of the texture bound to a sampler.
func (c *Context) TexelSize(sampler string) math.Vec2 {
	s := c.surfaceFor(sampler)
	if s == nil || s.width == 0 || s.height == 0 {
		return math.NewVec2Zero()
	}
	return math.NewVec2(1/float32(s.width), 1/float32(s.height))
}

func (c *Context) Float(name string, fallback float32) float32 {
	if u, ok := c.Uniforms[name]; ok {
		return u.Float()
	}
	return fallback
}

func (c *Context) Vec4(name string, fallback math.Vec4) math.Vec4 {
	if u, ok := c.Uniforms[name]; ok {
		return u.Vec4()
	}
	return fallback
}

var gaussWeights = [5]float32{0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216}

func luminance(c math.Vec4) float32 {
	return c.X*0.2126 + c.Y*0.7152 + c.Z*0.0722
}

func rgb(c math.Vec4, a float32) math.Vec4 {
	return math.NewVec4(c.X, c.Y, c.Z, a)
}

func basicKernel(_ *Context, in Fragment) math.Vec4 {
	return in.Colour
}

func texturedKernel(ctx *Context, in Fragment) math.Vec4 {
	return ctx.Sample("u_texture0", in.Texcoord).Mul(in.Colour)
}

func textKernel(ctx *Context, in Fragment) math.Vec4 {
	coverage := ctx.Sample("u_texture0", in.Texcoord).W
	return rgb(in.Colour, in.Colour.W*coverage)
}

func copyKernel(ctx *Context, in Fragment) math.Vec4 {
	return ctx.Sample("u_source", in.Texcoord)
}

func brightnessKernel(ctx *Context, in Fragment) math.Vec4 {
	c := ctx.Sample("u_source", in.Texcoord)
	if luminance(c) > ctx.Float("u_threshold", 0.7) {
		return rgb(c, 1)
	}
	return math.NewVec4Zero()
}

func gaussKernel(vertical bool) Kernel {
	return func(ctx *Context, in Fragment) math.Vec4 {
		texel := ctx.TexelSize("u_source")
		step := math.NewVec2(texel.X, 0)
		if vertical {
			step = math.NewVec2(0, texel.Y)
		}
		result := ctx.Sample("u_source", in.Texcoord).MulScalar(gaussWeights[0])
		for i := 1; i < len(gaussWeights); i++ {
			offset := step.MulScalar(float32(i))
			result = result.Add(ctx.Sample("u_source", in.Texcoord.Add(offset)).MulScalar(gaussWeights[i]))
			result = result.Add(ctx.Sample("u_source", in.Texcoord.Sub(offset)).MulScalar(gaussWeights[i]))
		}
		return rgb(result, 1)
	}
}

func bloomCombineKernel(ctx *Context, in Fragment) math.Vec4 {
	src := ctx.Sample("u_source", in.Texcoord)
	bloom := ctx.Sample("u_bloom", in.Texcoord).MulScalar(ctx.Float("u_intensity", 1))
	return math.NewVec4(src.X+bloom.X, src.Y+bloom.Y, src.Z+bloom.Z, src.W)
}

func edgeDetectKernel(ctx *Context, in Fragment) math.Vec4 {
	t := ctx.TexelSize("u_source")
	l := func(dx, dy float32) float32 {
		return luminance(ctx.Sample("u_source", in.Texcoord.Add(math.NewVec2(dx*t.X, dy*t.Y))))
	}
	tl, tc, tr := l(-1, 1), l(0, 1), l(1, 1)
	ml, mr := l(-1, 0), l(1, 0)
	bl, bc, br := l(-1, -1), l(0, -1), l(1, -1)

	gx := -tl - 2*ml - bl + tr + 2*mr + br
	gy := -bl - 2*bc - br + tl + 2*tc + tr
	edge := math.Clamp(math32.Sqrt(gx*gx+gy*gy), 0, 1)
	return math.NewVec4(edge, edge, edge, 1)
}

func edgeCombineKernel(ctx *Context, in Fragment) math.Vec4 {
	src := ctx.Sample("u_source", in.Texcoord)
	colour := ctx.Vec4("u_colour", math.NewVec4(0, 0, 0, 1))
	e := math.Clamp(ctx.Sample("u_edges", in.Texcoord).X*ctx.Float("u_strength", 1), 0, 1) * colour.W
	out := src.Lerp(colour, e)
	return rgb(out, math32.Max(src.W, e))
}

func lightCombineKernel(ctx *Context, in Fragment) math.Vec4 {
	light := ctx.Sample("u_source", in.Texcoord)
	ambient := ctx.Vec4("u_ambient", math.NewVec4(0.1, 0.1, 0.1, 1))
	return math.NewVec4(
		math32.Max(light.X, ambient.X),
		math32.Max(light.Y, ambient.Y),
		math32.Max(light.Z, ambient.Z),
		1,
	)
}

func downsampleKernel(ctx *Context, in Fragment) math.Vec4 {
	t := ctx.TexelSize("u_source")
	at := func(dx, dy float32) math.Vec4 {
		return ctx.Sample("u_source", in.Texcoord.Add(math.NewVec2(dx*t.X, dy*t.Y)))
	}
	result := at(0, 0).MulScalar(0.125)
	result = result.Add(at(-2, 2).Add(at(2, 2)).Add(at(-2, -2)).Add(at(2, -2)).MulScalar(0.03125))
	result = result.Add(at(0, 2).Add(at(-2, 0)).Add(at(2, 0)).Add(at(0, -2)).MulScalar(0.0625))
	result = result.Add(at(-1, 1).Add(at(1, 1)).Add(at(-1, -1)).Add(at(1, -1)).MulScalar(0.125))
	return math.NewVec4(
		math32.Max(result.X, 0.0001),
		math32.Max(result.Y, 0.0001),
		math32.Max(result.Z, 0.0001),
		1,
	)
}

func upsampleKernel(ctx *Context, in Fragment) math.Vec4 {
	r := ctx.Float("u_filter_radius", 0.005)
	at := func(dx, dy float32) math.Vec4 {
		return ctx.Sample("u_source", in.Texcoord.Add(math.NewVec2(dx*r, dy*r)))
	}
	result := at(0, 0).MulScalar(4)
	result = result.Add(at(0, 1).Add(at(-1, 0)).Add(at(1, 0)).Add(at(0, -1)).MulScalar(2))
	result = result.Add(at(-1, 1).Add(at(1, 1)).Add(at(-1, -1)).Add(at(1, -1)))
	return rgb(result.MulScalar(1.0/16.0), 1)
}

func bloomMixKernel(ctx *Context, in Fragment) math.Vec4 {
	src := ctx.Sample("u_source", in.Texcoord)
	bloom := ctx.Sample("u_bloom", in.Texcoord)
	return rgb(src.Lerp(bloom, ctx.Float("u_strength", 0.04)), src.W)
}

func bloomFinalKernel(ctx *Context, in Fragment) math.Vec4 {
	src := ctx.Sample("u_source", in.Texcoord)
	bloom := ctx.Sample("u_bloom", in.Texcoord)
	c := src.Lerp(bloom, ctx.Float("u_strength", 0.04))
	exposure := ctx.Float("u_exposure", 1)
	return math.NewVec4(
		1-math32.Exp(-c.X*exposure),
		1-math32.Exp(-c.Y*exposure),
		1-math32.Exp(-c.Z*exposure),
		src.W,
	)
}

func builtinKernels() map[string]Kernel {
	return map[string]Kernel{
		"basic":            basicKernel,
		"textured":         texturedKernel,
		"sprite":           texturedKernel,
		"text":             textKernel,
		"copy":             copyKernel,
		"brightness":       brightnessKernel,
		"gauss_vertical":   gaussKernel(true),
		"gauss_horizontal": gaussKernel(false),
		"bloom_combine":    bloomCombineKernel,
		"edge_detect":      edgeDetectKernel,
		"edge_combine":     edgeCombineKernel,
		"light_combine":    lightCombineKernel,
		"downsample":       downsampleKernel,
		"upsample":         upsampleKernel,
		"bloom_mix":        bloomMixKernel,
		"bloom_final":      bloomFinalKernel,
	}
}
