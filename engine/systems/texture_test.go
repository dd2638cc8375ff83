package systems

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func writePNG(t *testing.T, dir, name string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestTextureSystemDefaultTexture(t *testing.T) {
	backend := newSoftBackend(t)
	ts, err := NewTextureSystem(backend)
	require.NoError(t, err)

	def := ts.DefaultTexture
	require.NotNil(t, def)
	pixels, err := backend.TextureReadData(def.Handle)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 255, 255, 255}, pixels)

	ts.Destroy(metadata.DEFAULT_TEXTURE_NAME)
	_, ok := ts.Get(metadata.DEFAULT_TEXTURE_NAME)
	assert.True(t, ok)
}

func TestTextureSystemLoadAll(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"red":   writePNG(t, dir, "red.png", 4, 2, color.RGBA{R: 255, A: 255}),
		"green": writePNG(t, dir, "green.png", 2, 2, color.RGBA{G: 255, A: 255}),
	}

	backend := newSoftBackend(t)
	ts, err := NewTextureSystem(backend)
	require.NoError(t, err)
	require.NoError(t, ts.LoadAll(files, metadata.NearestTextureOptions()))

	red, ok := ts.Get("red")
	require.True(t, ok)
	assert.Equal(t, uint32(4), red.Width)
	assert.Equal(t, uint32(2), red.Height)
	pixels, err := backend.TextureReadData(red.Handle)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0, 0, 255}, pixels[:4])

	_, ok = ts.Get("green")
	assert.True(t, ok)

	files["broken"] = filepath.Join(dir, "missing.png")
	assert.Error(t, ts.LoadAll(files, metadata.NearestTextureOptions()))
}

func TestTextureSystemReplaceAndDestroy(t *testing.T) {
	ts, err := NewTextureSystem(newSoftBackend(t))
	require.NoError(t, err)

	first, err := ts.Create("canvas", 4, 4, metadata.DefaultTextureOptions())
	require.NoError(t, err)
	second, err := ts.Create("canvas", 8, 8, metadata.DefaultTextureOptions())
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	got, ok := ts.Get("canvas")
	require.True(t, ok)
	assert.Equal(t, uint32(8), got.Width)

	ts.Destroy("canvas")
	_, ok = ts.Get("canvas")
	assert.False(t, ok)

	require.NoError(t, ts.Shutdown())
	assert.Empty(t, ts.RegisteredTextureTable)
}
