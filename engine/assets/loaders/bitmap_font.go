package loaders

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/**
 * @brief Loads AngelCode bitmap fonts (.fnt text descriptor plus page images).
 */
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if filepath.Ext(path) != ".fnt" {
		return nil, fmt.Errorf("bitmap font `%s`: unsupported file type", path)
	}
	data, err := fl.importFNTFile(path)
	if err != nil {
		return nil, err
	}
	size := uint64(0)
	for _, p := range data.Pages {
		size += uint64(len(p.Pixels))
	}
	return &metadata.Resource{
		Name:     data.Face,
		FullPath: path,
		Type:     metadata.ResourceTypeBitmapFont,
		DataSize: size,
		Data:     data,
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *metadata.Resource) error {
	if data, ok := resource.Data.(*metadata.FontResourceData); ok {
		data.Glyphs = nil
		data.Kerning = nil
		data.Pages = nil
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

func (fl *BitmapFontLoader) importFNTFile(path string) (*metadata.FontResourceData, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, err
	}
	desc := font.Descriptor
	base := float32(desc.Common.Base)

	out := &metadata.FontResourceData{
		Face:        desc.Info.Face,
		Size:        uint32(desc.Info.Size),
		LineHeight:  float32(desc.Common.LineHeight),
		Baseline:    base,
		AtlasWidth:  uint32(desc.Common.ScaleW),
		AtlasHeight: uint32(desc.Common.ScaleH),
		Glyphs:      make(map[rune]metadata.Glyph, len(desc.Chars)),
		Kerning:     make(map[metadata.KerningPair]int32, len(desc.Kerning)),
	}

	// pages are stored by id
	ids := make([]int, 0, len(desc.Pages))
	files := make(map[int]string, len(desc.Pages))
	for _, p := range desc.Pages {
		ids = append(ids, int(p.ID))
		files[int(p.ID)] = p.File
	}
	sort.Ints(ids)
	dir := filepath.Dir(path)
	for _, id := range ids {
		page, err := LoadImageFile(filepath.Join(dir, files[id]))
		if err != nil {
			return nil, fmt.Errorf("bitmap font `%s` page %d: %w", path, id, err)
		}
		out.PageFiles = append(out.PageFiles, files[id])
		out.Pages = append(out.Pages, page)
	}

	for _, g := range desc.Chars {
		r := rune(g.ID)
		out.Glyphs[r] = metadata.Glyph{
			Codepoint: r,
			AtlasRect: math.NewRect(float32(g.X), float32(g.Y), float32(g.Width), float32(g.Height)),
			Size:      math.NewVec2(float32(g.Width), float32(g.Height)),
			Bearing:   math.NewVec2(float32(g.XOffset), base-float32(g.YOffset)),
			Advance:   int32(g.XAdvance) * 64,
			Page:      int(g.Page),
		}
	}
	for p, k := range desc.Kerning {
		out.Kerning[metadata.KerningPair{First: rune(p.First), Second: rune(p.Second)}] = int32(k.Amount) * 64
	}
	return out, nil
}
