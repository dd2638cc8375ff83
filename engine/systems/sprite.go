package systems

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/**
 * @brief A textured quad. The quad is centred on the transform origin and
 * spans Size world units before the transform scale is applied.
 */
type Sprite struct {
	Transform *math.Transform2D
	/** @brief Local size of the quad, the texture rectangle size by default. */
	Size   math.Vec2
	Colour math.Vec4

	texture *Texture
	/** @brief Sub rectangle of the texture in pixels, origin top-left. */
	textureRect math.Rect
}

func NewSprite(texture *Texture) *Sprite {
	s := &Sprite{
		Transform: math.NewTransform2D(),
		Colour:    math.NewVec4One(),
		Size:      math.NewVec2One(),
	}
	s.SetTexture(texture, true)
	return s
}

func (s *Sprite) GetTexture() *Texture {
	return s.texture
}

/**
 * @brief Changes the texture. With resetRect the texture rectangle and the
 * size are reset to the whole texture.
 */
func (s *Sprite) SetTexture(texture *Texture, resetRect bool) {
	s.texture = texture
	if resetRect && texture != nil {
		s.SetTextureRect(math.NewRect(0, 0, float32(texture.Width), float32(texture.Height)))
	}
}

func (s *Sprite) GetTextureRect() math.Rect {
	return s.textureRect
}

// SetTextureRect selects the displayed part of the texture and resizes the quad to it.
func (s *Sprite) SetTextureRect(rect math.Rect) {
	s.textureRect = rect
	s.Size = rect.Size()
}

// normalizedRect returns the texture rectangle in [0, 1] texture space, v = 0 being the image top.
func (s *Sprite) normalizedRect() math.Vec4 {
	if s.texture == nil || s.texture.Width == 0 || s.texture.Height == 0 {
		return math.NewVec4(0, 0, 1, 1)
	}
	w, h := float32(s.texture.Width), float32(s.texture.Height)
	r := s.textureRect
	return math.NewVec4(r.X/w, r.Y/h, r.Width/w, r.Height/h)
}

/**
 * @brief Packs the sprite into the instance record consumed by the sprite layout.
 */
func (s *Sprite) Instance() metadata.SpriteInstance {
	return metadata.SpriteInstance{
		Position: s.Transform.Apply(math.NewVec2Zero()),
		Scale:    s.Size.Mul(s.Transform.GetScale()),
		Angle:    s.Transform.GetAngle(),
		TexRect:  s.normalizedRect(),
		Colour:   s.Colour,
	}
}

// Bounds returns the axis aligned world rectangle enclosing the sprite.
func (s *Sprite) Bounds() math.Rect {
	in := s.Instance()
	return instanceBounds(in.Position, in.Scale, in.Angle)
}

func instanceBounds(center, size math.Vec2, angle float32) math.Rect {
	corners := math.GeometryRectangleCorners(center, size, angle)
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX, maxX = math32.Min(minX, c.X), math32.Max(maxX, c.X)
		minY, maxY = math32.Min(minY, c.Y), math32.Max(maxY, c.Y)
	}
	return math.NewRect(minX, minY, maxX-minX, maxY-minY)
}

/**
 * @brief A string drawn with a font. The transform position is the pen
 * position on the first baseline.
 */
type Text struct {
	Transform *math.Transform2D
	String    string
	Colour    math.Vec4

	font *Font
}

func NewText(font *Font, s string) *Text {
	return &Text{
		Transform: math.NewTransform2D(),
		String:    s,
		Colour:    math.NewVec4One(),
		font:      font,
	}
}

func (t *Text) GetFont() *Font {
	return t.font
}

func (t *Text) SetFont(font *Font) {
	t.font = font
}

// LocalBounds returns the laid out glyph rectangle before the transform is applied.
func (t *Text) LocalBounds() math.Rect {
	if t.font == nil {
		return math.Rect{}
	}
	return t.font.Layout(t.String).Bounds
}
