package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func testFontData() *metadata.FontResourceData {
	return &metadata.FontResourceData{
		Face:       "test",
		Size:       10,
		LineHeight: 20,
		Baseline:   10,
		Glyphs: map[rune]metadata.Glyph{
			'A': {Codepoint: 'A', AtlasRect: math.NewRect(0, 0, 8, 10), Size: math.NewVec2(8, 10), Bearing: math.NewVec2(1, 10), Advance: 10 * 64},
			'V': {Codepoint: 'V', AtlasRect: math.NewRect(8, 0, 8, 10), Size: math.NewVec2(8, 10), Bearing: math.NewVec2(1, 10), Advance: 10 * 64},
			' ': {Codepoint: ' ', Advance: 5 * 64},
			'?': {Codepoint: '?', AtlasRect: math.NewRect(16, 0, 8, 10), Size: math.NewVec2(8, 10), Bearing: math.NewVec2(0, 10), Advance: 9 * 64},
		},
		Kerning: map[metadata.KerningPair]int32{
			{First: 'A', Second: 'V'}: -2 * 64,
		},
		Pages: []*metadata.ImageResourceData{
			{ChannelCount: 4, Width: 32, Height: 16, Pixels: make([]uint8, 32*16*4)},
		},
	}
}

func newTestFont(t *testing.T, sm *SystemManager) *Font {
	t.Helper()
	f, err := sm.FontSystem().register("test", testFontData())
	require.NoError(t, err)
	return f
}

func TestFontLayoutAdvanceAndKerning(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	f := newTestFont(t, sm)

	l := f.Layout("AV")
	require.Len(t, l.Quads, 2)
	assert.Equal(t, math.NewVec2(5, 5), l.Quads[0].Center)
	// the pair is pulled 2 pixels closer
	assert.Equal(t, math.NewVec2(13, 5), l.Quads[1].Center)
	assert.Equal(t, math.NewVec4(0.25, 0, 0.25, 0.625), l.Quads[1].TexRect)
	assert.Equal(t, float32(18), l.Width)
	assert.Equal(t, math.NewRect(1, 0, 16, 10), l.Bounds)
	assert.Equal(t, 1, l.Lines)

	assert.Same(t, l, f.Layout("AV"))
}

func TestFontLayoutNewLinesAndSpaces(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	f := newTestFont(t, sm)

	l := f.Layout("A A\nA")
	require.Len(t, l.Quads, 3)
	assert.Equal(t, math.NewVec2(20, 5), l.Quads[1].Center)
	assert.Equal(t, math.NewVec2(5, -15), l.Quads[2].Center)
	assert.Equal(t, 2, l.Lines)
	assert.Equal(t, float32(25), l.Width)
	assert.Equal(t, math.NewRect(1, -20, 23, 30), l.Bounds)

	missing := f.Layout("Z")
	require.Len(t, missing.Quads, 1)
	assert.Equal(t, 'Z', missing.Quads[0].Rune)
	assert.Equal(t, float32(0.5), missing.Quads[0].TexRect.X)
}

func TestFontSystemRegistersPages(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	f := newTestFont(t, sm)

	page, ok := sm.TextureSystem().Get("font.test.0")
	require.True(t, ok)
	assert.Same(t, page, f.GetTexture())
	assert.Nil(t, f.GetPage(1))

	got, ok := sm.FontSystem().Get("test")
	require.True(t, ok)
	assert.Same(t, f, got)

	_, err := sm.FontSystem().register("empty", &metadata.FontResourceData{})
	assert.Error(t, err)
}

func TestDrawTextStagesOneInstancePerGlyph(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	f := newTestFont(t, sm)
	r := newOffscreen(t, sm, 8, 8)
	r.DebugTextBounds = true

	text := NewText(f, "A V")
	text.Transform.SetPosition(math.NewVec2(100, 50))
	text.Colour = green
	r.DrawText(text, "", metadata.DrawTypeDynamic)

	sprites := r.GetRegistry(metadata.LayoutSprite)
	require.Len(t, sprites.Configurations(), 1)
	config := sprites.Configurations()[0]
	assert.Equal(t, f.GetTexture().Handle, config.Textures[0])
	instances := sprites.Batches(config)[0].Instances()
	require.Len(t, instances, 2)
	assert.Equal(t, math.NewVec2(105, 55), instances[0].Position)
	assert.Equal(t, math.NewVec2(120, 55), instances[1].Position)
	assert.Equal(t, green, instances[1].Colour)

	// four outline edges of the layout box
	lines := r.GetRegistry(metadata.LayoutVertex)
	require.Len(t, lines.Configurations(), 1)
	assert.Equal(t, uint32(24), lines.Batches(lines.Configurations()[0])[0].UsedCount())
}

func TestDrawTextWithoutFont(t *testing.T) {
	sm, _ := newTestManager(t, DefaultRendererConfig())
	r := newOffscreen(t, sm, 8, 8)

	r.DrawText(NewText(nil, "hello"), "", metadata.DrawTypeDynamic)
	assert.Empty(t, r.GetRegistry(metadata.LayoutSprite).Configurations())
}
