package systems

import (
	"fmt"

	"github.com/chewxy/math32"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spaghettifunk/anima2d/engine/assets/loaders"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

const layoutCacheSize = 256

/** @brief One glyph quad of a laid out string, in local text space (y up). */
type GlyphQuad struct {
	Rune   rune
	Center math.Vec2
	Size   math.Vec2
	/** @brief Normalized atlas rectangle, v = 0 being the atlas top. */
	TexRect math.Vec4
	Page    int
}

type TextLayout struct {
	Quads []GlyphQuad
	/** @brief Union of the glyph quads. */
	Bounds math.Rect
	/** @brief Pen advance of the longest line, in pixels. */
	Width float32
	Lines int
}

/**
 * @brief Glyph metrics plus the atlas pages they are drawn from.
 */
type Font struct {
	Name       string
	LineHeight float32
	Baseline   float32

	pages   []*Texture
	glyphs  map[rune]metadata.Glyph
	kerning map[metadata.KerningPair]int32
	atlas   math.Vec2
	layouts *lru.Cache[string, *TextLayout]
}

// GetTexture returns the first atlas page.
func (f *Font) GetTexture() *Texture {
	if len(f.pages) == 0 {
		return nil
	}
	return f.pages[0]
}

func (f *Font) GetPage(page int) *Texture {
	if page < 0 || page >= len(f.pages) {
		return nil
	}
	return f.pages[page]
}

func (f *Font) GetGlyph(r rune) (metadata.Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

// Kerning returns the 26.6 adjustment between two runes.
func (f *Font) Kerning(first, second rune) int32 {
	return f.kerning[metadata.KerningPair{First: first, Second: second}]
}

/**
 * @brief Lays a string out from the pen origin on the first baseline. Advances
 * accumulate in 26.6 subpixel units, '\n' starts a new line LineHeight below.
 * Runes missing from the font fall back to '?' when available.
 */
func (f *Font) Layout(text string) *TextLayout {
	if l, ok := f.layouts.Get(text); ok {
		return l
	}

	l := &TextLayout{Lines: 1}
	var pen int32
	penY := float32(0)
	prev := rune(-1)
	minX, minY := float32(math32.MaxFloat32), float32(math32.MaxFloat32)
	maxX, maxY := float32(-math32.MaxFloat32), float32(-math32.MaxFloat32)

	for _, r := range text {
		if r == '\n' {
			l.Width = math32.Max(l.Width, float32(pen)/64)
			pen = 0
			penY -= f.LineHeight
			prev = -1
			l.Lines++
			continue
		}
		g, ok := f.glyphs[r]
		if !ok {
			if g, ok = f.glyphs['?']; !ok {
				continue
			}
		}
		if prev >= 0 {
			pen += f.Kerning(prev, r)
		}
		prev = r

		if g.Size.X > 0 && g.Size.Y > 0 {
			left := float32(pen)/64 + g.Bearing.X
			top := penY + g.Bearing.Y
			q := GlyphQuad{
				Rune:   r,
				Center: math.NewVec2(left+g.Size.X*0.5, top-g.Size.Y*0.5),
				Size:   g.Size,
				TexRect: math.NewVec4(
					g.AtlasRect.X/f.atlas.X, g.AtlasRect.Y/f.atlas.Y,
					g.AtlasRect.Width/f.atlas.X, g.AtlasRect.Height/f.atlas.Y),
				Page: g.Page,
			}
			l.Quads = append(l.Quads, q)
			minX, maxX = math32.Min(minX, left), math32.Max(maxX, left+g.Size.X)
			minY, maxY = math32.Min(minY, top-g.Size.Y), math32.Max(maxY, top)
		}
		pen += g.Advance
	}
	l.Width = math32.Max(l.Width, float32(pen)/64)
	if len(l.Quads) > 0 {
		l.Bounds = math.NewRect(minX, minY, maxX-minX, maxY-minY)
	}
	f.layouts.Add(text, l)
	return l
}

type FontSystem struct {
	textures *TextureSystem
	fonts    map[string]*Font
}

func NewFontSystem(textures *TextureSystem) *FontSystem {
	return &FontSystem{
		textures: textures,
		fonts:    make(map[string]*Font),
	}
}

func (fontSystem *FontSystem) Shutdown() error {
	for name, f := range fontSystem.fonts {
		for _, p := range f.pages {
			fontSystem.textures.Destroy(p.Name)
		}
		delete(fontSystem.fonts, name)
	}
	return nil
}

func (fontSystem *FontSystem) Get(name string) (*Font, bool) {
	f, ok := fontSystem.fonts[name]
	return f, ok
}

/**
 * @brief Loads an AngelCode .fnt file and uploads its pages.
 */
func (fontSystem *FontSystem) LoadBitmapFont(name, path string) (*Font, error) {
	loader := &loaders.BitmapFontLoader{}
	res, err := loader.Load(path, metadata.ResourceTypeBitmapFont, nil)
	if err != nil {
		core.LogError("bitmap font `%s`: %s", name, err)
		return nil, err
	}
	defer loader.Unload(res)
	return fontSystem.register(name, res.Data.(*metadata.FontResourceData))
}

/**
 * @brief Bakes a TrueType/OpenType font at the given size into an atlas.
 *
 * @param name The name to register the font under.
 * @param ttf The font file content.
 * @param size The size in pixels.
 */
func (fontSystem *FontSystem) LoadSystemFont(name string, ttf []byte, size float64) (*Font, error) {
	data, err := loaders.BakeSystemFont(ttf, loaders.SystemFontParams{Size: size})
	if err != nil {
		core.LogError("system font `%s`: %s", name, err)
		return nil, err
	}
	return fontSystem.register(name, data)
}

func (fontSystem *FontSystem) register(name string, data *metadata.FontResourceData) (*Font, error) {
	if len(data.Pages) == 0 {
		return nil, fmt.Errorf("font `%s` has no atlas page", name)
	}
	layouts, err := lru.New[string, *TextLayout](layoutCacheSize)
	if err != nil {
		return nil, err
	}
	f := &Font{
		Name:       name,
		LineHeight: data.LineHeight,
		Baseline:   data.Baseline,
		glyphs:     data.Glyphs,
		kerning:    data.Kerning,
		layouts:    layouts,
	}
	for i, page := range data.Pages {
		tex, err := fontSystem.textures.CreateFromPixels(fmt.Sprintf("font.%s.%d", name, i), page.Width, page.Height,
			metadata.DefaultTextureOptions(), page.Pixels)
		if err != nil {
			return nil, err
		}
		f.pages = append(f.pages, tex)
	}
	f.atlas = math.NewVec2(float32(data.Pages[0].Width), float32(data.Pages[0].Height))
	if old, ok := fontSystem.fonts[name]; ok && len(old.pages) > len(f.pages) {
		for _, p := range old.pages[len(f.pages):] {
			fontSystem.textures.Destroy(p.Name)
		}
	}
	fontSystem.fonts[name] = f
	core.LogDebug("font `%s` loaded (%d glyphs, %d pages)", name, len(f.glyphs), len(f.pages))
	return f, nil
}
