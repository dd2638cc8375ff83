package effects

import (
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

/**
 * @brief Sobel edge detection. The edge strength is rendered into a scratch
 * buffer, then the edges are painted in Colour over the source.
 */
type EdgeDetect struct {
	Colour   math.Vec4
	Strength float32

	factory Factory
	edges   *Scratch
}

func NewEdgeDetect(factory Factory, width, height uint32, colour math.Vec4, strength float32) (*EdgeDetect, error) {
	if err := checkSize("edge detect", width, height); err != nil {
		return nil, err
	}
	edges, err := NewScratch(factory, width, height, metadata.DefaultTextureOptions())
	if err != nil {
		return nil, err
	}
	preload(edges.Renderer, ShaderEdgeDetect)
	return &EdgeDetect{Colour: colour, Strength: strength, factory: factory, edges: edges}, nil
}

func (e *EdgeDetect) Process(frame metadata.FrameContext, source metadata.TextureHandle, target *systems.Renderer) {
	Pass(frame, e.edges.Renderer, ShaderEdgeDetect, metadata.BlendReplace(), source)

	setUniform(target, ShaderEdgeCombine, "u_colour", metadata.UniformVec4(e.Colour))
	setUniform(target, ShaderEdgeCombine, "u_strength", metadata.UniformFloat(e.Strength))
	Pass(frame, target, ShaderEdgeCombine, metadata.BlendAlpha(), source, e.edges.Texture())
}

func (e *EdgeDetect) Resize(width, height uint32) error {
	if err := checkSize("edge detect", width, height); err != nil {
		return err
	}
	return e.edges.Resize(width, height)
}

func (e *EdgeDetect) Destroy() {
	e.edges.Release(e.factory)
}
