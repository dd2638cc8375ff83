package effects

import (
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

type BloomPhysicalConfig struct {
	/** @brief Number of half sized pyramid levels. */
	MipCount int
	/** @brief Tent filter radius of the upsample pass, in uv units. */
	FilterRadius float32
	/** @brief Mix factor between the source and the accumulated bloom. */
	Strength float32
}

func DefaultBloomPhysicalConfig() BloomPhysicalConfig {
	return BloomPhysicalConfig{
		MipCount:     5,
		FilterRadius: 0.005,
		Strength:     0.04,
	}
}

/**
 * @brief Mip pyramid bloom. Each level is downsampled from the previous one,
 * the pyramid is then walked back up accumulating an upsampled blur into the
 * larger level, and the finest level is mixed with the source.
 */
type BloomPhysical struct {
	BloomPhysicalConfig

	factory Factory
	mips    []*Scratch
	mix     string
}

// mipSize halves a size level times, never below one pixel.
func mipSize(width, height uint32, level int) (uint32, uint32) {
	for i := 0; i < level; i++ {
		width, height = max(width/2, 1), max(height/2, 1)
	}
	return width, height
}

func newBloomPhysical(factory Factory, width, height uint32, config BloomPhysicalConfig, mix string) (*BloomPhysical, error) {
	if err := checkSize("physical bloom", width, height); err != nil {
		return nil, err
	}
	config.MipCount = max(config.MipCount, 1)
	b := &BloomPhysical{BloomPhysicalConfig: config, factory: factory, mix: mix}
	for level := 1; level <= config.MipCount; level++ {
		w, h := mipSize(width, height, level)
		s, err := NewScratch(factory, w, h, metadata.HDRTextureOptions())
		if err != nil {
			b.Destroy()
			return nil, err
		}
		preload(s.Renderer, ShaderDownsample, ShaderUpsample)
		b.mips = append(b.mips, s)
	}
	return b, nil
}

func NewBloomPhysical(factory Factory, width, height uint32, config BloomPhysicalConfig) (*BloomPhysical, error) {
	return newBloomPhysical(factory, width, height, config, ShaderBloomMix)
}

func (b *BloomPhysical) Process(frame metadata.FrameContext, source metadata.TextureHandle, target *systems.Renderer) {
	prev := source
	for _, mip := range b.mips {
		Pass(frame, mip.Renderer, ShaderDownsample, metadata.BlendReplace(), prev)
		prev = mip.Texture()
	}
	for i := len(b.mips) - 1; i > 0; i-- {
		dst := b.mips[i-1].Renderer
		setUniform(dst, ShaderUpsample, "u_filter_radius", metadata.UniformFloat(b.FilterRadius))
		Pass(frame, dst, ShaderUpsample, metadata.BlendAdditive(), b.mips[i].Texture())
	}

	setUniform(target, b.mix, "u_strength", metadata.UniformFloat(b.Strength))
	Pass(frame, target, b.mix, metadata.BlendAlpha(), source, b.mips[0].Texture())
}

func (b *BloomPhysical) Resize(width, height uint32) error {
	if err := checkSize("physical bloom", width, height); err != nil {
		return err
	}
	for i, mip := range b.mips {
		w, h := mipSize(width, height, i+1)
		if err := mip.Resize(w, h); err != nil {
			return err
		}
	}
	return nil
}

func (b *BloomPhysical) Destroy() {
	releaseAll(b.factory, b.mips)
	b.mips = nil
}

// Levels returns the pyramid sizes, finest first.
func (b *BloomPhysical) Levels() [][2]uint32 {
	out := make([][2]uint32, len(b.mips))
	for i, mip := range b.mips {
		w, h := mip.Buffer.GetSize()
		out[i] = [2]uint32{w, h}
	}
	return out
}

/**
 * @brief BloomPhysical finished by an exposure tonemap of the mix.
 */
type BloomFinal struct {
	*BloomPhysical
	Exposure float32
}

func NewBloomFinal(factory Factory, width, height uint32, config BloomPhysicalConfig, exposure float32) (*BloomFinal, error) {
	b, err := newBloomPhysical(factory, width, height, config, ShaderBloomFinal)
	if err != nil {
		return nil, err
	}
	return &BloomFinal{BloomPhysical: b, Exposure: exposure}, nil
}

func (b *BloomFinal) Process(frame metadata.FrameContext, source metadata.TextureHandle, target *systems.Renderer) {
	setUniform(target, ShaderBloomFinal, "u_exposure", metadata.UniformFloat(b.Exposure))
	b.BloomPhysical.Process(frame, source, target)
}
