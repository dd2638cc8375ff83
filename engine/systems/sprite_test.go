package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/anima2d/engine/math"
)

func TestSpriteInstance(t *testing.T) {
	tex := &Texture{Name: "atlas", Handle: 3, Width: 64, Height: 32}
	s := NewSprite(tex)
	assert.Equal(t, math.NewVec2(64, 32), s.Size)

	s.SetTextureRect(math.NewRect(16, 8, 32, 16))
	s.Transform.SetPosition(math.NewVec2(10, 20))
	s.Transform.SetScale(math.NewVec2(2, 2))
	s.Colour = red

	in := s.Instance()
	assert.Equal(t, math.NewVec2(10, 20), in.Position)
	assert.Equal(t, math.NewVec2(64, 32), in.Scale)
	assert.Equal(t, math.NewVec4(0.25, 0.25, 0.5, 0.5), in.TexRect)
	assert.Equal(t, red, in.Colour)
}

func TestSpriteWithoutTexture(t *testing.T) {
	s := NewSprite(nil)
	assert.Nil(t, s.GetTexture())
	assert.Equal(t, math.NewVec2One(), s.Size)
	assert.Equal(t, math.NewVec4(0, 0, 1, 1), s.Instance().TexRect)

	// keeping the rectangle leaves the size alone
	s.SetTexture(&Texture{Width: 8, Height: 8}, false)
	assert.Equal(t, math.NewVec2One(), s.Size)
}

func TestSpriteBounds(t *testing.T) {
	s := NewSprite(&Texture{Width: 4, Height: 2})
	s.Transform.SetPosition(math.NewVec2(10, 10))

	b := s.Bounds()
	assert.InDelta(t, 8, b.X, 1e-4)
	assert.InDelta(t, 9, b.Y, 1e-4)
	assert.InDelta(t, 4, b.Width, 1e-4)
	assert.InDelta(t, 2, b.Height, 1e-4)

	s.Transform.SetAngle(math.K_PI / 2)
	b = s.Bounds()
	assert.InDelta(t, 9, b.X, 1e-4)
	assert.InDelta(t, 8, b.Y, 1e-4)
	assert.InDelta(t, 2, b.Width, 1e-4)
	assert.InDelta(t, 4, b.Height, 1e-4)
}
