package layers

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/effects"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

/**
 * @brief An off-screen canvas plus the post effects applied when it is
 * composited. Games draw into GetCanvas() during the frame.
 */
type DrawLayer struct {
	ID   uuid.UUID
	Name string
	/** @brief Clear colour of the canvas and of the first scratch buffer. */
	Background math.Vec4

	depth   int
	factory effects.Factory
	options metadata.TextureOptions
	canvas  *effects.Scratch
	// ping-pong pair, created when a second effect is attached
	scratch [2]*effects.Scratch
	effects []effects.PostEffect
	active  bool
}

func newDrawLayer(factory effects.Factory, name string, depth int, width, height uint32, options metadata.TextureOptions) (*DrawLayer, error) {
	canvas, err := effects.NewScratch(factory, width, height, options)
	if err != nil {
		return nil, err
	}
	return &DrawLayer{
		ID:         uuid.New(),
		Name:       name,
		Background: math.NewVec4Zero(),
		depth:      depth,
		factory:    factory,
		options:    options,
		canvas:     canvas,
		active:     true,
	}, nil
}

// GetCanvas returns the renderer the layer content is drawn with.
func (l *DrawLayer) GetCanvas() *systems.Renderer {
	return l.canvas.Renderer
}

// GetTexture returns the canvas colour buffer.
func (l *DrawLayer) GetTexture() metadata.TextureHandle {
	return l.canvas.Texture()
}

func (l *DrawLayer) GetDepth() int {
	return l.depth
}

func (l *DrawLayer) GetSize() (uint32, uint32) {
	return l.canvas.Buffer.GetSize()
}

func (l *DrawLayer) Effects() []effects.PostEffect {
	return l.effects
}

// AddEffect appends an effect to the chain. The layer owns it from now on.
func (l *DrawLayer) AddEffect(effect effects.PostEffect) {
	l.effects = append(l.effects, effect)
}

// RemoveEffects destroys every attached effect.
func (l *DrawLayer) RemoveEffects() {
	for _, e := range l.effects {
		e.Destroy()
	}
	l.effects = nil
}

func (l *DrawLayer) SetActive(active bool) {
	l.active = active
}

func (l *DrawLayer) Toggle() {
	l.active = !l.active
}

func (l *DrawLayer) IsActive() bool {
	return l.active
}

// Clear clears the canvas to the background colour and empties its dynamic batches.
func (l *DrawLayer) Clear() {
	l.canvas.Renderer.Clear(l.Background)
}

func (l *DrawLayer) scratchPair() bool {
	for i := range l.scratch {
		if l.scratch[i] != nil {
			continue
		}
		w, h := l.GetSize()
		s, err := effects.NewScratch(l.factory, w, h, l.options)
		if err != nil {
			core.LogError("layer `%s` scratch buffer: %s", l.Name, err)
			return false
		}
		l.scratch[i] = s
	}
	return true
}

/**
 * @brief Composites the layer into target.
 *
 * Without effects the canvas batches are flushed straight into the target. A
 * single effect reads the canvas buffer and writes the target. Longer chains
 * start from scratch A and alternate A -> B -> A, the last effect writing the
 * target.
 */
func (l *DrawLayer) drawInto(frame metadata.FrameContext, target *systems.Renderer) {
	canvas := l.canvas.Renderer
	switch len(l.effects) {
	case 0:
		canvas.DrawAllInto(frame, target.GetTarget())
		return
	case 1:
		canvas.DrawAll(frame)
		l.effects[0].Process(frame, l.canvas.Texture(), target)
		return
	}

	if !l.scratchPair() {
		return
	}
	src, dst := l.scratch[0], l.scratch[1]
	src.Buffer.Clear(l.Background)
	canvas.DrawAllInto(frame, src.Buffer)

	last := len(l.effects) - 1
	for _, e := range l.effects[:last] {
		dst.Buffer.Clear(math.NewVec4Zero())
		e.Process(frame, src.Texture(), dst.Renderer)
		src, dst = dst, src
	}
	l.effects[last].Process(frame, src.Texture(), target)
}

/**
 * @brief Resizes the canvas, the scratch buffers and every effect. Zero sizes
 * are rejected.
 */
func (l *DrawLayer) Resize(width, height uint32) error {
	if err := l.canvas.Resize(width, height); err != nil {
		return err
	}
	for _, s := range l.scratch {
		if s == nil {
			continue
		}
		if err := s.Resize(width, height); err != nil {
			return err
		}
	}
	for _, e := range l.effects {
		if err := e.Resize(width, height); err != nil {
			return err
		}
	}
	return nil
}

func (l *DrawLayer) Destroy() {
	l.RemoveEffects()
	for i, s := range l.scratch {
		s.Release(l.factory)
		l.scratch[i] = nil
	}
	l.canvas.Release(l.factory)
}
