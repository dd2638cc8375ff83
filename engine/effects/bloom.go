package effects

import (
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

type BloomConfig struct {
	/** @brief Luminance above which a pixel glows. */
	Threshold float32
	/** @brief Number of vertical plus horizontal blur pairs. */
	GaussPassCount int
	/** @brief Scale of the blurred highlights added back. */
	Intensity float32
}

func DefaultBloomConfig() BloomConfig {
	return BloomConfig{
		Threshold:      0.7,
		GaussPassCount: 5,
		Intensity:      1,
	}
}

/**
 * @brief Brightness threshold, ping-pong gauss blur, then an additive combine
 * of the blurred highlights over the source.
 */
type Bloom struct {
	BloomConfig

	factory Factory
	a, b    *Scratch
}

func NewBloom(factory Factory, width, height uint32, config BloomConfig) (*Bloom, error) {
	if err := checkSize("bloom", width, height); err != nil {
		return nil, err
	}
	s, err := newScratches(factory, 2, width, height, metadata.DefaultTextureOptions())
	if err != nil {
		return nil, err
	}
	preload(s[0].Renderer, ShaderBrightness, ShaderGaussHorizontal)
	preload(s[1].Renderer, ShaderGaussVertical)
	return &Bloom{BloomConfig: config, factory: factory, a: s[0], b: s[1]}, nil
}

func (b *Bloom) Process(frame metadata.FrameContext, source metadata.TextureHandle, target *systems.Renderer) {
	setUniform(b.a.Renderer, ShaderBrightness, "u_threshold", metadata.UniformFloat(b.Threshold))
	Pass(frame, b.a.Renderer, ShaderBrightness, metadata.BlendReplace(), source)
	blurPasses(frame, b.a, b.b, b.GaussPassCount)

	setUniform(target, ShaderBloomCombine, "u_intensity", metadata.UniformFloat(b.Intensity))
	Pass(frame, target, ShaderBloomCombine, metadata.BlendAdditiveOverAlpha(), source, b.a.Texture())
}

func (b *Bloom) Resize(width, height uint32) error {
	if err := checkSize("bloom", width, height); err != nil {
		return err
	}
	if err := b.a.Resize(width, height); err != nil {
		return err
	}
	return b.b.Resize(width, height)
}

func (b *Bloom) Destroy() {
	b.a.Release(b.factory)
	b.b.Release(b.factory)
}
