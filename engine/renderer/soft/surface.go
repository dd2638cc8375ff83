package soft

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/**
 * @brief CPU side texture storage. Every texel is four floats, row 0 is t = 0.
 */
type surface struct {
	width   uint32
	height  uint32
	options metadata.TextureOptions
	texels  []float32
}

func newSurface(width, height uint32, options metadata.TextureOptions) *surface {
	return &surface{
		width:   width,
		height:  height,
		options: options,
		texels:  make([]float32, int(width)*int(height)*4),
	}
}

// quantized reports whether writes are rounded to 8 bits per channel.
func (s *surface) quantized() bool {
	return s.options.InternalFormat == metadata.TextureInternalFormatRGBA8
}

func (s *surface) resize(width, height uint32) {
	s.width = width
	s.height = height
	s.texels = make([]float32, int(width)*int(height)*4)
}

func (s *surface) clear(colour math.Vec4) {
	c := s.store(colour)
	for i := 0; i < len(s.texels); i += 4 {
		s.texels[i] = c.X
		s.texels[i+1] = c.Y
		s.texels[i+2] = c.Z
		s.texels[i+3] = c.W
	}
}

// store applies the storage format of the surface to a colour.
func (s *surface) store(c math.Vec4) math.Vec4 {
	if !s.quantized() {
		return c
	}
	return math.NewVec4(quantize(c.X), quantize(c.Y), quantize(c.Z), quantize(c.W))
}

func quantize(v float32) float32 {
	return float32(toByte(v)) / 255.0
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}

func (s *surface) texel(x, y uint32) math.Vec4 {
	i := (int(y)*int(s.width) + int(x)) * 4
	return math.NewVec4(s.texels[i], s.texels[i+1], s.texels[i+2], s.texels[i+3])
}

func (s *surface) setTexel(x, y uint32, c math.Vec4) {
	c = s.store(c)
	i := (int(y)*int(s.width) + int(x)) * 4
	s.texels[i] = c.X
	s.texels[i+1] = c.Y
	s.texels[i+2] = c.Z
	s.texels[i+3] = c.W
}

// write uploads pixels in the surface Format and DataType.
func (s *surface) write(pixels []uint8) error {
	channels := 4
	switch s.options.Format {
	case metadata.TextureFormatRGB:
		channels = 3
	case metadata.TextureFormatRed:
		channels = 1
	}
	component := 1
	if s.options.DataType == metadata.TextureDataTypeFloat {
		component = 4
	}
	count := int(s.width) * int(s.height)
	if len(pixels) < count*channels*component {
		return fmt.Errorf("texture write: got %d bytes, need %d", len(pixels), count*channels*component)
	}

	read := func(i int) float32 {
		if component == 4 {
			return gomath.Float32frombits(binary.LittleEndian.Uint32(pixels[i*4:]))
		}
		return float32(pixels[i]) / 255.0
	}
	for p := 0; p < count; p++ {
		c := math.NewVec4(0, 0, 0, 1)
		switch channels {
		case 4:
			c = math.NewVec4(read(p*4), read(p*4+1), read(p*4+2), read(p*4+3))
		case 3:
			c = math.NewVec4(read(p*3), read(p*3+1), read(p*3+2), 1)
		case 1:
			c.X = read(p)
		}
		c = s.store(c)
		s.texels[p*4] = c.X
		s.texels[p*4+1] = c.Y
		s.texels[p*4+2] = c.Z
		s.texels[p*4+3] = c.W
	}
	return nil
}

// readRGBA8 returns the content as tightly packed RGBA8, row 0 first.
func (s *surface) readRGBA8() []uint8 {
	out := make([]uint8, len(s.texels))
	for i, v := range s.texels {
		out[i] = toByte(v)
	}
	return out
}

func wrap(coord int, size int, mode metadata.TextureRepeat) (int, bool) {
	switch mode {
	case metadata.TextureRepeatRepeat:
		coord %= size
		if coord < 0 {
			coord += size
		}
	case metadata.TextureRepeatMirroredRepeat:
		period := 2 * size
		coord %= period
		if coord < 0 {
			coord += period
		}
		if coord >= size {
			coord = period - 1 - coord
		}
	case metadata.TextureRepeatClampToBorder:
		if coord < 0 || coord >= size {
			return 0, false
		}
	default:
		if coord < 0 {
			coord = 0
		} else if coord >= size {
			coord = size - 1
		}
	}
	return coord, true
}

func (s *surface) fetch(x, y int) math.Vec4 {
	wx, okx := wrap(x, int(s.width), s.options.WrapX)
	wy, oky := wrap(y, int(s.height), s.options.WrapY)
	if !okx || !oky {
		return math.NewVec4Zero()
	}
	return s.texel(uint32(wx), uint32(wy))
}

/**
 * @brief Samples at normalized coordinates, texel centres at (i + 0.5) / size.
 */
func (s *surface) sample(uv math.Vec2) math.Vec4 {
	if s.width == 0 || s.height == 0 {
		return math.NewVec4Zero()
	}
	fx := uv.X * float32(s.width)
	fy := uv.Y * float32(s.height)
	if s.options.MagFilter == metadata.TextureFilterModeNearest {
		return s.fetch(int(math32.Floor(fx)), int(math32.Floor(fy)))
	}

	fx -= 0.5
	fy -= 0.5
	x0 := math32.Floor(fx)
	y0 := math32.Floor(fy)
	tx := fx - x0
	ty := fy - y0
	ix, iy := int(x0), int(y0)

	c00 := s.fetch(ix, iy)
	c10 := s.fetch(ix+1, iy)
	c01 := s.fetch(ix, iy+1)
	c11 := s.fetch(ix+1, iy+1)
	return c00.Lerp(c10, tx).Lerp(c01.Lerp(c11, tx), ty)
}
