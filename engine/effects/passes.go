package effects

import (
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

/** @brief Builtin pass shaders. */
const (
	ShaderCopy            = "copy"
	ShaderBrightness      = "brightness"
	ShaderGaussVertical   = "gauss_vertical"
	ShaderGaussHorizontal = "gauss_horizontal"
	ShaderBloomCombine    = "bloom_combine"
	ShaderEdgeDetect      = "edge_detect"
	ShaderEdgeCombine     = "edge_combine"
	ShaderLightCombine    = "light_combine"
	ShaderDownsample      = "downsample"
	ShaderUpsample        = "upsample"
	ShaderBloomMix        = "bloom_mix"
	ShaderBloomFinal      = "bloom_final"
)

// fullscreenQuad covers [0, w] x [0, h] with uv (0, 0) at the bottom-left corner.
func fullscreenQuad(w, h float32) []metadata.Vertex {
	white := math.NewVec4One()
	corners := [4]metadata.Vertex{
		{Position: math.NewVec2(0, 0), Colour: white, Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec2(w, 0), Colour: white, Texcoord: math.NewVec2(1, 0)},
		{Position: math.NewVec2(w, h), Colour: white, Texcoord: math.NewVec2(1, 1)},
		{Position: math.NewVec2(0, h), Colour: white, Texcoord: math.NewVec2(0, 1)},
	}
	out := make([]metadata.Vertex, 0, len(math.GeometryQuadIndices))
	for _, i := range math.GeometryQuadIndices {
		out = append(out, corners[i])
	}
	return out
}

/**
 * @brief Draws one full target quad through shader. textures are bound in the
 * shader's sampler order. The target View and BlendParams are restored before
 * returning.
 *
 * @param frame The per frame values.
 * @param target The renderer drawn into.
 * @param shader A vertex layout shader.
 * @param blend The blend state of this pass.
 * @param textures The sampled textures.
 */
func Pass(frame metadata.FrameContext, target *systems.Renderer, shader string, blend metadata.BlendParams, textures ...metadata.TextureHandle) {
	view, blendParams := target.View, target.BlendParams
	defer func() {
		target.View = view
		target.BlendParams = blendParams
	}()

	size := target.GetSize()
	target.View = components.NewViewFromRect(math.NewRect(0, 0, size.X, size.Y))
	target.BlendParams = blend
	target.DrawImmediate(frame, fullscreenQuad(size.X, size.Y), shader, textures...)
}

// setUniform stores a uniform value on the copy of shader owned by r, loading it first.
func setUniform(r *systems.Renderer, shader, uniform string, value metadata.UniformValue) {
	shaders := r.GetShaders()
	if _, ok := shaders.CheckShader(shader); !ok {
		return
	}
	if err := shaders.SetUniform(shader, uniform, value); err != nil {
		core.LogWarn("%s", err)
	}
}

// preload compiles the pass shaders of a scratch renderer up front.
func preload(r *systems.Renderer, names ...string) {
	for _, name := range names {
		r.GetShaders().CheckShader(name)
	}
}

// blurPasses runs count vertical then horizontal gauss passes, a -> b -> a.
// The result ends in a.
func blurPasses(frame metadata.FrameContext, a, b *Scratch, count int) {
	for i := 0; i < count; i++ {
		Pass(frame, b.Renderer, ShaderGaussVertical, metadata.BlendReplace(), a.Texture())
		Pass(frame, a.Renderer, ShaderGaussHorizontal, metadata.BlendReplace(), b.Texture())
	}
}
