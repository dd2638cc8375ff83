package loaders

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/** @brief Parameters accepted by the system font loader. */
type SystemFontParams struct {
	/** @brief Size in points. */
	Size float64
	/** @brief Dots per inch, 72 when zero so that points equal pixels. */
	DPI float64
	/** @brief The characters baked into the atlas. Printable ASCII when empty. */
	Charset string
}

const (
	atlasWidth  = 512
	glyphMargin = 1
)

func defaultCharset() string {
	runes := make([]rune, 0, 95)
	for r := rune(32); r < 127; r++ {
		runes = append(runes, r)
	}
	return string(runes)
}

type SystemFontLoader struct{}

func (fl *SystemFontLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	p, ok := params.(*SystemFontParams)
	if !ok {
		return nil, fmt.Errorf("failed to cast params in system font loader")
	}
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := BakeSystemFont(fontBytes, *p)
	if err != nil {
		return nil, fmt.Errorf("system font `%s`: %w", path, err)
	}
	return &metadata.Resource{
		Name:     data.Face,
		FullPath: path,
		Type:     metadata.ResourceTypeSystemFont,
		DataSize: uint64(len(data.Pages[0].Pixels)),
		Data:     data,
	}, nil
}

func (fl *SystemFontLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

/**
 * @brief Rasterizes the charset of an OpenType/TrueType font into a single
 * white-on-transparent RGBA atlas page, packing glyphs in rows.
 *
 * @param fontBytes The font file content.
 * @param params Size, DPI and charset.
 * @return Font data with one atlas page.
 */
func BakeSystemFont(fontBytes []byte, params SystemFontParams) (*metadata.FontResourceData, error) {
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, err
	}
	if params.Size <= 0 {
		return nil, fmt.Errorf("invalid font size %g", params.Size)
	}
	dpi := params.DPI
	if dpi == 0 {
		dpi = 72
	}
	charset := params.Charset
	if charset == "" {
		charset = defaultCharset()
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    params.Size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	type placed struct {
		r       rune
		bounds  image.Rectangle
		mask    *image.Alpha
		advance fixed.Int26_6
		at      image.Point
	}

	// first pass lays the glyphs out, the second draws them once the atlas height is known
	var glyphs []placed
	x, y, rowHeight := glyphMargin, glyphMargin, 0
	seen := make(map[rune]bool)
	for _, r := range charset {
		if seen[r] {
			continue
		}
		seen[r] = true
		dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w, h := dr.Dx(), dr.Dy()
		if x+w+glyphMargin > atlasWidth {
			x = glyphMargin
			y += rowHeight + glyphMargin
			rowHeight = 0
		}
		// the face reuses its mask buffer between calls
		alpha := image.NewAlpha(image.Rect(0, 0, w, h))
		draw.Draw(alpha, alpha.Bounds(), mask, maskp, draw.Src)
		glyphs = append(glyphs, placed{r: r, bounds: dr, mask: alpha, advance: advance, at: image.Pt(x, y)})
		x += w + glyphMargin
		rowHeight = max(rowHeight, h)
	}
	height := nextPowerOfTwo(y + rowHeight + glyphMargin)

	atlas := image.NewRGBA(image.Rect(0, 0, atlasWidth, height))
	out := &metadata.FontResourceData{
		Face:        fmt.Sprintf("%gpt", params.Size),
		Size:        uint32(params.Size),
		LineHeight:  float32(lineHeight),
		Baseline:    float32(ascent),
		AtlasWidth:  atlasWidth,
		AtlasHeight: uint32(height),
		Glyphs:      make(map[rune]metadata.Glyph, len(glyphs)),
		Kerning:     make(map[metadata.KerningPair]int32),
	}
	if name, err := f.Name(nil, sfnt.NameIDFamily); err == nil && name != "" {
		out.Face = name
	}

	for _, g := range glyphs {
		w, h := g.bounds.Dx(), g.bounds.Dy()
		target := image.Rect(g.at.X, g.at.Y, g.at.X+w, g.at.Y+h)
		if w > 0 && h > 0 {
			draw.DrawMask(atlas, target, image.White, image.Point{}, g.mask, image.Point{}, draw.Over)
		}
		out.Glyphs[g.r] = metadata.Glyph{
			Codepoint: g.r,
			AtlasRect: math.NewRect(float32(g.at.X), float32(g.at.Y), float32(w), float32(h)),
			Size:      math.NewVec2(float32(w), float32(h)),
			Bearing:   math.NewVec2(float32(g.bounds.Min.X), float32(-g.bounds.Min.Y)),
			Advance:   int32(g.advance),
		}
	}
	for _, a := range glyphs {
		for _, b := range glyphs {
			if k := face.Kern(a.r, b.r); k != 0 {
				out.Kerning[metadata.KerningPair{First: a.r, Second: b.r}] = int32(k)
			}
		}
	}
	out.Pages = []*metadata.ImageResourceData{ImageToResourceData(atlas)}
	return out, nil
}

func nextPowerOfTwo(v int) int {
	n := 1
	for n < v {
		n <<= 1
	}
	return n
}
