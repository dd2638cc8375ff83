package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/renderer/soft"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

const size = 8

var _ Factory = (*systems.SystemManager)(nil)

func newManager(t *testing.T) *systems.SystemManager {
	t.Helper()
	b := soft.New()
	require.NoError(t, b.Initialize(&metadata.RendererBackendConfig{Width: size, Height: size}))
	sm, err := systems.NewSystemManager(b, systems.DefaultRendererConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sm.Shutdown() })
	return sm
}

func newScratch(t *testing.T, sm *systems.SystemManager) *Scratch {
	t.Helper()
	s, err := NewScratch(sm, size, size, metadata.NearestTextureOptions())
	require.NoError(t, err)
	return s
}

// solidSource returns a scratch filled with one colour.
func solidSource(t *testing.T, sm *systems.SystemManager, colour math.Vec4) *Scratch {
	t.Helper()
	s := newScratch(t, sm)
	s.Buffer.Clear(colour)
	return s
}

func readPixels(t *testing.T, s *Scratch) []uint8 {
	t.Helper()
	pixels, err := s.Buffer.ReadPixels()
	require.NoError(t, err)
	return pixels
}

func pixel(pixels []uint8, x, y int) [4]uint8 {
	i := (y*size + x) * 4
	return [4]uint8{pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]}
}

func allEffects(t *testing.T, sm *systems.SystemManager) map[string]PostEffect {
	t.Helper()
	bloom, err := NewBloom(sm, size, size, DefaultBloomConfig())
	require.NoError(t, err)
	physical, err := NewBloomPhysical(sm, size, size, DefaultBloomPhysicalConfig())
	require.NoError(t, err)
	final, err := NewBloomFinal(sm, size, size, DefaultBloomPhysicalConfig(), 1)
	require.NoError(t, err)
	edges, err := NewEdgeDetect(sm, size, size, math.NewVec4(0, 0, 0, 1), 1)
	require.NoError(t, err)
	light, err := NewLightCombine(sm, size, size, math.NewVec4(0.1, 0.1, 0.1, 1), 2)
	require.NoError(t, err)
	return map[string]PostEffect{
		"bloom":          bloom,
		"bloom physical": physical,
		"bloom final":    final,
		"edge detect":    edges,
		"light combine":  light,
	}
}

func TestEffectsRestoreTargetState(t *testing.T) {
	sm := newManager(t)
	source := solidSource(t, sm, math.NewVec4(0.9, 0.5, 0.2, 1))

	for name, effect := range allEffects(t, sm) {
		t.Run(name, func(t *testing.T) {
			target := newScratch(t, sm)
			view := components.NewView(math.NewVec2(3, 3), math.NewVec2(4, 2))
			view.SetRotation(0.3)
			target.Renderer.View = view
			target.Renderer.BlendParams = metadata.BlendMultiply()

			effect.Process(metadata.FrameContext{}, source.Texture(), target.Renderer)

			assert.Equal(t, view, target.Renderer.View)
			assert.Equal(t, metadata.BlendMultiply(), target.Renderer.BlendParams)
			effect.Destroy()
		})
	}
}

func TestEffectsRejectZeroResize(t *testing.T) {
	sm := newManager(t)
	for name, effect := range allEffects(t, sm) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, effect.Resize(0, size), core.ErrInvalidSize)
			assert.ErrorIs(t, effect.Resize(size, 0), core.ErrInvalidSize)
			assert.NoError(t, effect.Resize(size*2, size))
			effect.Destroy()
		})
	}

	_, err := NewBloom(sm, 0, size, DefaultBloomConfig())
	assert.ErrorIs(t, err, core.ErrInvalidSize)
}

func TestBloomBelowThresholdKeepsSource(t *testing.T) {
	sm := newManager(t)
	source := solidSource(t, sm, math.NewVec4(0.2, 0.3, 0.4, 1))
	target := solidSource(t, sm, math.NewVec4Zero())

	config := DefaultBloomConfig()
	config.GaussPassCount = 0
	bloom, err := NewBloom(sm, size, size, config)
	require.NoError(t, err)
	defer bloom.Destroy()

	bloom.Process(metadata.FrameContext{}, source.Texture(), target.Renderer)
	assert.Equal(t, readPixels(t, source), readPixels(t, target))
}

func TestBloomBrightensHighlights(t *testing.T) {
	sm := newManager(t)
	source := solidSource(t, sm, math.NewVec4(0.8, 0.8, 0.8, 1))
	target := solidSource(t, sm, math.NewVec4Zero())

	config := DefaultBloomConfig()
	config.GaussPassCount = 1
	config.Intensity = 0.1
	bloom, err := NewBloom(sm, size, size, config)
	require.NoError(t, err)
	defer bloom.Destroy()

	bloom.Process(metadata.FrameContext{}, source.Texture(), target.Renderer)
	got := pixel(readPixels(t, target), 4, 4)
	want := pixel(readPixels(t, source), 4, 4)
	assert.Greater(t, got[0], want[0])
	assert.Equal(t, uint8(255), got[3])
}

func TestBloomPhysicalPyramid(t *testing.T) {
	sm := newManager(t)
	config := DefaultBloomPhysicalConfig()
	config.MipCount = 3
	b, err := NewBloomPhysical(sm, 64, 32, config)
	require.NoError(t, err)
	defer b.Destroy()

	assert.Equal(t, [][2]uint32{{32, 16}, {16, 8}, {8, 4}}, b.Levels())
	require.NoError(t, b.Resize(4, 4))
	assert.Equal(t, [][2]uint32{{2, 2}, {1, 1}, {1, 1}}, b.Levels())
}

func TestEdgeDetectOutlinesContrast(t *testing.T) {
	sm := newManager(t)
	source := solidSource(t, sm, math.NewVec4(0, 0, 0, 1))
	source.Renderer.DrawRectangle(math.NewRect(0, 0, size/2, size), math.NewVec4One(), metadata.DrawTypeDynamic)
	source.Renderer.DrawAll(metadata.FrameContext{})
	target := solidSource(t, sm, math.NewVec4Zero())

	edges, err := NewEdgeDetect(sm, size, size, math.NewVec4(1, 0, 0, 1), 1)
	require.NoError(t, err)
	defer edges.Destroy()
	edges.Process(metadata.FrameContext{}, source.Texture(), target.Renderer)

	pixels := readPixels(t, target)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, pixel(pixels, 0, 4))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(pixels, size/2-1, 4))
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, pixel(pixels, size-1, 4))
}

func TestLightCombineMultipliesTarget(t *testing.T) {
	for _, passes := range []int{0, 1} {
		sm := newManager(t)
		lights := solidSource(t, sm, math.NewVec4(1, 0, 0, 1))
		target := solidSource(t, sm, math.NewVec4One())

		light, err := NewLightCombine(sm, size, size, math.NewVec4(0.2, 0.2, 0.2, 1), passes)
		require.NoError(t, err)
		light.Process(metadata.FrameContext{}, lights.Texture(), target.Renderer)

		px := pixel(readPixels(t, target), 4, 4)
		assert.InDelta(t, 255, int(px[0]), 2, "passes %d", passes)
		assert.InDelta(t, 51, int(px[1]), 2, "passes %d", passes)
		assert.InDelta(t, 51, int(px[2]), 2, "passes %d", passes)
		light.Destroy()
	}
}
