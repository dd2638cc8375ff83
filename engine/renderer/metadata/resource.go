package metadata

import "github.com/spaghettifunk/anima2d/engine/math"

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief Shader stage source (.vert or .frag). */
	ResourceTypeShader
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Bitmap font resource type. */
	ResourceTypeBitmapFont
	/** @brief System (vector) font resource type. */
	ResourceTypeSystemFont
	/** @brief Engine/application configuration. */
	ResourceTypeConfig
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeBitmapFont:
		return "bitmap_font"
	case ResourceTypeSystemFont:
		return "system_font"
	case ResourceTypeConfig:
		return "config"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/**
 * @brief A structure to hold image resource data. Pixels are RGBA8, first row is the image top.
 */
type ImageResourceData struct {
	/** @brief The number of channels. Always 4 after decoding. */
	ChannelCount uint8
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The pixel data of the image. */
	Pixels []uint8
}

/**
 * @brief Glyph metrics in atlas pixels.
 */
type Glyph struct {
	Codepoint rune
	/** @brief Sub rectangle of the atlas, origin top-left. */
	AtlasRect math.Rect
	/** @brief Size of the glyph quad in pixels. */
	Size math.Vec2
	/** @brief Offset from the pen position to the glyph top-left, y up. */
	Bearing math.Vec2
	/** @brief Horizontal advance in 1/64 pixel units. */
	Advance int32
	/** @brief Atlas page the glyph lives on. */
	Page int
}

type KerningPair struct {
	First, Second rune
}

/**
 * @brief Font data produced by the font loaders. Pages hold the atlas pixels
 * (system fonts) or the page file names relative to the font file (bitmap fonts).
 */
type FontResourceData struct {
	Face        string
	Size        uint32
	LineHeight  float32
	Baseline    float32
	AtlasWidth  uint32
	AtlasHeight uint32
	Glyphs      map[rune]Glyph
	Kerning     map[KerningPair]int32
	PageFiles   []string
	Pages       []*ImageResourceData
}
