package effects

import (
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

/**
 * @brief Multiplies the target by a light map. The source holds the lights,
 * every pixel is at least Ambient bright. With GaussPassCount > 0 the light map
 * is blurred first to soften the light edges.
 */
type LightCombine struct {
	Ambient        math.Vec4
	GaussPassCount int

	factory Factory
	width   uint32
	height  uint32
	// created on the first blurred Process
	a, b *Scratch
}

func NewLightCombine(factory Factory, width, height uint32, ambient math.Vec4, gaussPassCount int) (*LightCombine, error) {
	if err := checkSize("light combine", width, height); err != nil {
		return nil, err
	}
	return &LightCombine{
		Ambient:        ambient,
		GaussPassCount: gaussPassCount,
		factory:        factory,
		width:          width,
		height:         height,
	}, nil
}

func (l *LightCombine) scratches() bool {
	if l.a != nil {
		return true
	}
	s, err := newScratches(l.factory, 2, l.width, l.height, metadata.DefaultTextureOptions())
	if err != nil {
		return false
	}
	l.a, l.b = s[0], s[1]
	return true
}

func (l *LightCombine) Process(frame metadata.FrameContext, source metadata.TextureHandle, target *systems.Renderer) {
	light := source
	if l.GaussPassCount > 0 && l.scratches() {
		Pass(frame, l.a.Renderer, ShaderCopy, metadata.BlendReplace(), source)
		blurPasses(frame, l.a, l.b, l.GaussPassCount)
		light = l.a.Texture()
	}

	setUniform(target, ShaderLightCombine, "u_ambient", metadata.UniformVec4(l.Ambient))
	Pass(frame, target, ShaderLightCombine, metadata.BlendMultiply(), light)
}

func (l *LightCombine) Resize(width, height uint32) error {
	if err := checkSize("light combine", width, height); err != nil {
		return err
	}
	l.width, l.height = width, height
	if l.a == nil {
		return nil
	}
	if err := l.a.Resize(width, height); err != nil {
		return err
	}
	return l.b.Resize(width, height)
}

func (l *LightCombine) Destroy() {
	l.a.Release(l.factory)
	l.b.Release(l.factory)
	l.a, l.b = nil, nil
}
