package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func TestDrawSpriteSplitsAcrossBatches(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)

	// far outside the view so the rasterizer has nothing to fill
	s := NewSprite(nil)
	s.Transform.SetPosition(math.NewVec2(-1000, -1000))
	for i := 0; i < 70000; i++ {
		r.DrawSprite(s, "", metadata.DrawTypeDynamic)
	}

	reg := r.GetRegistry(metadata.LayoutSprite)
	configs := reg.Configurations()
	require.Len(t, configs, 1)
	assert.Equal(t, sm.TextureSystem().DefaultTexture.Handle, configs[0].Textures[0])
	batches := reg.Batches(configs[0])
	require.Len(t, batches, 2)
	assert.Equal(t, uint32(40000), batches[0].UsedCount())
	assert.Equal(t, uint32(30000), batches[1].UsedCount())

	r.DrawAll(metadata.FrameContext{})
	stats := r.Stats()
	assert.Equal(t, 2, stats.DrawCalls)
	assert.Equal(t, 70000, stats.Instances)
	assert.Equal(t, 2, stats.Batches)
}

func TestDrawInstancesFillsBatchesInOrder(t *testing.T) {
	config := DefaultRendererConfig()
	config.MaxInstancesPerBatch = 10
	sm, _ := newTestManager(t, config)
	r := newOffscreen(t, sm, 8, 8)

	r.DrawSprite(NewSprite(nil), "", metadata.DrawTypeDynamic)
	r.DrawInstances(make([]metadata.SpriteInstance, 25), nil, "", metadata.DrawTypeDynamic)

	reg := r.GetRegistry(metadata.LayoutSprite)
	batches := reg.Batches(reg.Configurations()[0])
	require.Len(t, batches, 3)
	assert.Equal(t, uint32(10), batches[0].UsedCount())
	assert.Equal(t, uint32(10), batches[1].UsedCount())
	assert.Equal(t, uint32(6), batches[2].UsedCount())
}

func TestDrawRectangleFillsPixels(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)

	r.Clear(black)
	r.DrawRectangle(math.NewRect(0, 0, 4, 8), red, metadata.DrawTypeDynamic)
	r.DrawAll(metadata.FrameContext{})

	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(t, r, 1, 1))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(t, r, 3, 7))
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, pixelAt(t, r, 6, 1))
	assert.Equal(t, 1, r.Stats().DrawCalls)
}

func TestClearIsIdempotent(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)

	r.DrawRectangle(math.NewRect(0, 0, 2, 2), red, metadata.DrawTypeDynamic)
	r.DrawRectangle(math.NewRect(0, 0, 2, 2), green, metadata.DrawTypeStatic)
	r.Clear(black)
	r.Clear(black)

	reg := r.GetRegistry(metadata.LayoutVertex)
	for _, config := range reg.Configurations() {
		for _, b := range reg.Batches(config) {
			if config.DrawType == metadata.DrawTypeStatic {
				assert.Equal(t, uint32(6), b.UsedCount())
			} else {
				assert.Equal(t, uint32(0), b.UsedCount())
			}
		}
	}

	// the static rectangle is still drawn after the clear
	r.DrawAll(metadata.FrameContext{})
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, pixelAt(t, r, 1, 1))
	assert.Equal(t, 1, r.Stats().DrawCalls)
}

func TestDrawWithUnknownShaderIsSkipped(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)

	r.DrawSprite(NewSprite(nil), "does_not_exist", metadata.DrawTypeDynamic)
	r.DrawVertices(triangle(red), "does_not_exist", metadata.DrawTypeDynamic)
	// a vertex shader cannot draw sprite instances
	r.DrawSprite(NewSprite(nil), DefaultShapeShader, metadata.DrawTypeDynamic)

	assert.Empty(t, r.GetRegistry(metadata.LayoutSprite).Configurations())
	assert.Empty(t, r.GetRegistry(metadata.LayoutVertex).Configurations())
}

func TestDrawImmediateLeavesBatchesUntouched(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)

	r.Clear(black)
	r.DrawRectangle(math.NewRect(0, 0, 4, 4), red, metadata.DrawTypeDynamic)
	r.DrawImmediate(metadata.FrameContext{}, quadVertices(math.NewRect(0, 0, 8, 8), green), DefaultShapeShader)

	assert.Equal(t, [4]uint8{0, 255, 0, 255}, pixelAt(t, r, 1, 1))
	reg := r.GetRegistry(metadata.LayoutVertex)
	require.Len(t, reg.Configurations(), 1)
	assert.Equal(t, uint32(6), reg.Batches(reg.Configurations()[0])[0].UsedCount())

	r.DrawAll(metadata.FrameContext{})
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(t, r, 1, 1))
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, pixelAt(t, r, 6, 6))
}

func TestDrawImmediateRejectsSpriteShader(t *testing.T) {
	sm, backend := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)

	backend.ResetStats()
	r.DrawImmediate(metadata.FrameContext{}, quadVertices(math.NewRect(0, 0, 8, 8), green), DefaultSpriteShader)
	assert.Equal(t, 0, backend.Stats().DrawCalls)
}

func TestViewControlsFlush(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)

	// moving the view right by 4 pulls the right half of the world into the left half of the target
	r.View.Move(math.NewVec2(4, 0))
	r.Clear(black)
	r.DrawRectangle(math.NewRect(4, 0, 4, 8), red, metadata.DrawTypeDynamic)
	r.DrawAll(metadata.FrameContext{})

	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(t, r, 1, 4))
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, pixelAt(t, r, 6, 4))
}

func TestBlendParamsApplyToFlush(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 4, 4)

	r.Clear(math.NewVec4(0, 0, 1, 1))
	r.BlendParams = metadata.BlendAdditive()
	r.DrawRectangle(math.NewRect(0, 0, 4, 4), red, metadata.DrawTypeDynamic)
	r.DrawAll(metadata.FrameContext{})

	px := pixelAt(t, r, 2, 2)
	assert.Equal(t, uint8(255), px[0])
	assert.Equal(t, uint8(255), px[2])
}

func TestMouseToWorld(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 100, 50)

	w := r.MouseToWorld(math.NewVec2(0, 0))
	assert.InDelta(t, 0, w.X, 1e-3)
	assert.InDelta(t, 50, w.Y, 1e-3)

	w = r.MouseToWorld(math.NewVec2(25, 50))
	assert.InDelta(t, 25, w.X, 1e-3)
	assert.InDelta(t, 0, w.Y, 1e-3)

	s := r.WorldToScreen(math.NewVec2(75, 25))
	assert.InDelta(t, 75, s.X, 1e-3)
	assert.InDelta(t, 25, s.Y, 1e-3)
}

func TestShapeTessellation(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)
	reg := r.GetRegistry(metadata.LayoutVertex)
	used := func() uint32 {
		n := uint32(0)
		for _, c := range reg.Configurations() {
			for _, b := range reg.Batches(c) {
				n += b.UsedCount()
			}
		}
		return n
	}

	r.DrawCircle(math.NewVec2(4, 4), 2, red, 0, metadata.DrawTypeDynamic)
	assert.Equal(t, uint32(DefaultCircleSegments*3), used())

	r.Clear(black)
	r.DrawRectangleOutline(math.NewRect(0, 0, 8, 8), 1, red, metadata.DrawTypeDynamic)
	assert.Equal(t, uint32(24), used())

	r.Clear(black)
	points := []math.Vec2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}}
	r.DrawPolyline(points, 1, red, false, metadata.DrawTypeDynamic)
	assert.Equal(t, uint32(12), used())
	r.DrawPolyline(points, 1, red, true, metadata.DrawTypeDynamic)
	assert.Equal(t, uint32(12+18), used())

	r.Clear(black)
	r.DrawEllipseOutline(math.NewVec2(4, 4), math.NewVec2(3, 2), 0, 1, red, 8, metadata.DrawTypeDynamic)
	assert.Equal(t, uint32(8*6), used())
}
