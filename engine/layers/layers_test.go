package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/effects"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/renderer/soft"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

const size = 8

var (
	red  = math.NewVec4(1, 0, 0, 1)
	blue = math.NewVec4(0, 0, 1, 1)
)

// copyEffect forwards its source through the copy shader and records every call.
type copyEffect struct {
	sources   []metadata.TextureHandle
	targets   []*systems.Renderer
	sizes     [][2]uint32
	resizeErr error
	destroyed bool
}

func (c *copyEffect) Process(frame metadata.FrameContext, source metadata.TextureHandle, target *systems.Renderer) {
	c.sources = append(c.sources, source)
	c.targets = append(c.targets, target)
	effects.Pass(frame, target, effects.ShaderCopy, metadata.BlendReplace(), source)
}

func (c *copyEffect) Resize(width, height uint32) error {
	c.sizes = append(c.sizes, [2]uint32{width, height})
	return c.resizeErr
}

func (c *copyEffect) Destroy() {
	c.destroyed = true
}

func newManager(t *testing.T) *systems.SystemManager {
	t.Helper()
	b := soft.New()
	require.NoError(t, b.Initialize(&metadata.RendererBackendConfig{Width: size, Height: size}))
	sm, err := systems.NewSystemManager(b, systems.DefaultRendererConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sm.Shutdown() })
	return sm
}

func newScreen(t *testing.T, sm *systems.SystemManager) (*systems.Renderer, *renderer.FrameBuffer) {
	t.Helper()
	r, fb, err := sm.NewOffscreenRenderer(size, size, metadata.NearestTextureOptions())
	require.NoError(t, err)
	fb.Clear(math.NewVec4Zero())
	return r, fb
}

func pixel(t *testing.T, fb *renderer.FrameBuffer, x, y int) [4]uint8 {
	t.Helper()
	pixels, err := fb.ReadPixels()
	require.NoError(t, err)
	i := (y*size + x) * 4
	return [4]uint8{pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]}
}

func textureOf(r *systems.Renderer) metadata.TextureHandle {
	return r.GetTarget().(*renderer.FrameBuffer).GetTexture()
}

func TestLayerWithoutEffectsDrawsInOnePass(t *testing.T) {
	sm := newManager(t)
	screen, fb := newScreen(t, sm)
	h := NewLayersHolder(sm, size, size)
	defer h.Destroy()

	world, err := h.AddLayer("world", 0, metadata.NearestTextureOptions())
	require.NoError(t, err)
	world.Clear()
	world.GetCanvas().DrawRectangle(math.NewRect(0, 0, size, size), red, metadata.DrawTypeDynamic)

	h.DrawInto(metadata.FrameContext{}, screen)

	for _, p := range [][2]int{{0, 0}, {3, 4}, {7, 7}} {
		assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(t, fb, p[0], p[1]))
	}
	assert.Equal(t, 1, world.GetCanvas().Stats().DrawCalls)
	// the canvas buffer itself was never drawn into
	canvas, err := world.GetCanvas().GetTarget().(*renderer.FrameBuffer).ReadPixels()
	require.NoError(t, err)
	assert.Equal(t, make([]uint8, size*size*4), canvas)
}

func TestLayersCompositeByDepth(t *testing.T) {
	sm := newManager(t)
	screen, fb := newScreen(t, sm)
	h := NewLayersHolder(sm, size, size)
	defer h.Destroy()

	top, err := h.AddLayer("top", 10, metadata.NearestTextureOptions())
	require.NoError(t, err)
	bottom, err := h.AddLayer("bottom", -3, metadata.NearestTextureOptions())
	require.NoError(t, err)
	h.ClearAll()
	bottom.GetCanvas().DrawRectangle(math.NewRect(0, 0, size, size), blue, metadata.DrawTypeDynamic)
	top.GetCanvas().DrawRectangle(math.NewRect(0, 0, size/2, size), red, metadata.DrawTypeDynamic)

	assert.Equal(t, []string{"bottom", "top"}, h.Names())
	assert.Equal(t, []*systems.Renderer{bottom.GetCanvas(), top.GetCanvas()}, h.Renderers())

	h.DrawInto(metadata.FrameContext{}, screen)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(t, fb, 1, 1))
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, pixel(t, fb, 6, 1))

	require.NoError(t, h.DeactivateLayer("bottom"))
	fb.Clear(math.NewVec4Zero())
	h.DrawInto(metadata.FrameContext{}, screen)
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixel(t, fb, 6, 1))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(t, fb, 1, 1))

	require.NoError(t, h.ToggleLayer("bottom"))
	assert.True(t, bottom.IsActive())
	assert.ErrorIs(t, h.ActivateLayer("missing"), core.ErrLayerNotFound)
}

func TestDepthsStayUnique(t *testing.T) {
	sm := newManager(t)
	h := NewLayersHolder(sm, size, size)
	defer h.Destroy()

	_, err := h.AddLayer("a", 0, metadata.DefaultTextureOptions())
	require.NoError(t, err)
	_, err = h.AddLayer("b", 1, metadata.DefaultTextureOptions())
	require.NoError(t, err)

	_, err = h.AddLayer("a", 2, metadata.DefaultTextureOptions())
	assert.ErrorIs(t, err, core.ErrLayerExists)
	_, err = h.AddLayer("c", 1, metadata.DefaultTextureOptions())
	assert.ErrorIs(t, err, core.ErrDepthOccupied)

	// occupied: nothing moves
	assert.False(t, h.ChangeDepth("a", 1))
	a, _ := h.GetLayerByDepth(0)
	b, _ := h.GetLayerByDepth(1)
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "b", b.Name)

	assert.True(t, h.ChangeDepth("a", 5))
	assert.True(t, h.ChangeDepth("a", 5))
	assert.False(t, h.ChangeDepth("missing", 7))
	_, ok := h.GetLayerByDepth(0)
	assert.False(t, ok)
	moved, ok := h.GetLayer("a")
	require.True(t, ok)
	assert.Equal(t, 5, moved.GetDepth())
	assert.Equal(t, []string{"b", "a"}, h.Names())

	require.NoError(t, h.RemoveLayer("b"))
	assert.False(t, h.HasLayer("b"))
	assert.ErrorIs(t, h.RemoveLayer("b"), core.ErrLayerNotFound)
	assert.Equal(t, 1, h.Len())
}

func TestEffectChains(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4} {
		sm := newManager(t)
		screen, fb := newScreen(t, sm)
		h := NewLayersHolder(sm, size, size)

		l, err := h.AddLayer("fx", 0, metadata.NearestTextureOptions())
		require.NoError(t, err)
		chain := make([]*copyEffect, n)
		for i := range chain {
			chain[i] = &copyEffect{}
			l.AddEffect(chain[i])
		}
		l.Clear()
		l.GetCanvas().DrawRectangle(math.NewRect(0, 0, size, size), red, metadata.DrawTypeDynamic)

		h.DrawInto(metadata.FrameContext{}, screen)

		for i, e := range chain {
			require.Len(t, e.sources, 1, "chain %d effect %d", n, i)
			if i > 0 {
				assert.Equal(t, textureOf(chain[i-1].targets[0]), e.sources[0], "chain %d effect %d", n, i)
			}
		}
		assert.Same(t, screen, chain[n-1].targets[0])
		if n == 1 {
			assert.Equal(t, l.GetTexture(), chain[0].sources[0])
		}
		assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(t, fb, 4, 4), "chain %d", n)

		h.Destroy()
		for _, e := range chain {
			assert.True(t, e.destroyed)
		}
	}
}

func TestLayersResize(t *testing.T) {
	sm := newManager(t)
	h := NewLayersHolder(sm, size, size)
	defer h.Destroy()

	l, err := h.AddLayer("fx", 0, metadata.DefaultTextureOptions())
	require.NoError(t, err)
	e := &copyEffect{}
	l.AddEffect(e)

	require.NoError(t, h.Resize(16, 4))
	w, hh := l.GetSize()
	assert.Equal(t, uint32(16), w)
	assert.Equal(t, uint32(4), hh)
	assert.Equal(t, [][2]uint32{{16, 4}}, e.sizes)

	assert.ErrorIs(t, h.Resize(0, 4), core.ErrInvalidSize)
	w, _ = l.GetSize()
	assert.Equal(t, uint32(16), w)

	// created after the resize, at the new size
	late, err := h.AddLayer("late", 1, metadata.DefaultTextureOptions())
	require.NoError(t, err)
	w, _ = late.GetSize()
	assert.Equal(t, uint32(16), w)
}

func TestFailedResizeKeepsHolderSize(t *testing.T) {
	sm := newManager(t)
	h := NewLayersHolder(sm, size, size)
	defer h.Destroy()

	l, err := h.AddLayer("fx", 0, metadata.DefaultTextureOptions())
	require.NoError(t, err)
	l.AddEffect(&copyEffect{resizeErr: core.ErrFramebufferIncomplete})

	assert.ErrorIs(t, h.Resize(16, 4), core.ErrFramebufferIncomplete)

	// layers added afterwards still get the last size every layer reached
	late, err := h.AddLayer("late", 1, metadata.DefaultTextureOptions())
	require.NoError(t, err)
	w, hh := late.GetSize()
	assert.Equal(t, uint32(size), w)
	assert.Equal(t, uint32(size), hh)
}

func TestClearAllEmptiesCanvases(t *testing.T) {
	sm := newManager(t)
	h := NewLayersHolder(sm, size, size)
	defer h.Destroy()

	l, err := h.AddLayer("world", 0, metadata.DefaultTextureOptions())
	require.NoError(t, err)
	l.GetCanvas().DrawRectangle(math.NewRect(0, 0, 1, 1), red, metadata.DrawTypeDynamic)
	l.SetActive(false)
	h.ClearAll()

	reg := l.GetCanvas().GetRegistry(metadata.LayoutVertex)
	for _, c := range reg.Configurations() {
		for _, b := range reg.Batches(c) {
			assert.Zero(t, b.UsedCount())
		}
	}
}
