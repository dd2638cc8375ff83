package effects

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

/**
 * @brief A full screen processing step. Process reads source and renders into
 * target, leaving the target View and BlendParams as they were.
 */
type PostEffect interface {
	Process(frame metadata.FrameContext, source metadata.TextureHandle, target *systems.Renderer)
	// Resize follows the size of the owning layer. Zero sizes are rejected.
	Resize(width, height uint32) error
	Destroy()
}

// Factory creates and releases off-screen renderers. SystemManager implements it.
type Factory interface {
	NewOffscreenRenderer(width, height uint32, options metadata.TextureOptions) (*systems.Renderer, *renderer.FrameBuffer, error)
	ReleaseRenderer(r *systems.Renderer)
}

/**
 * @brief An off-screen renderer plus the frame buffer it draws into.
 */
type Scratch struct {
	Renderer *systems.Renderer
	Buffer   *renderer.FrameBuffer
}

func NewScratch(factory Factory, width, height uint32, options metadata.TextureOptions) (*Scratch, error) {
	r, fb, err := factory.NewOffscreenRenderer(width, height, options)
	if err != nil {
		return nil, err
	}
	return &Scratch{Renderer: r, Buffer: fb}, nil
}

// Texture returns the colour attachment, sampled by the next pass.
func (s *Scratch) Texture() metadata.TextureHandle {
	return s.Buffer.GetTexture()
}

func (s *Scratch) Resize(width, height uint32) error {
	return s.Buffer.Resize(width, height)
}

func (s *Scratch) Release(factory Factory) {
	if s == nil || s.Renderer == nil {
		return
	}
	factory.ReleaseRenderer(s.Renderer)
	s.Renderer = nil
	s.Buffer = nil
}

func checkSize(effect string, width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogWarn("%s: resize to %dx%d rejected", effect, width, height)
		return fmt.Errorf("%s resize %dx%d: %w", effect, width, height, core.ErrInvalidSize)
	}
	return nil
}

// newScratches allocates count scratch pairs, releasing the ones already made on failure.
func newScratches(factory Factory, count int, width, height uint32, options metadata.TextureOptions) ([]*Scratch, error) {
	out := make([]*Scratch, 0, count)
	for i := 0; i < count; i++ {
		s, err := NewScratch(factory, width, height, options)
		if err != nil {
			releaseAll(factory, out)
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func releaseAll(factory Factory, scratches []*Scratch) {
	for _, s := range scratches {
		s.Release(factory)
	}
}
