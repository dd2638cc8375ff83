package metadata

const (
	/** @brief The default texture name. A 1x1 opaque white texel. */
	DEFAULT_TEXTURE_NAME string = "default"
)

/** @brief Backend handle of a texture. 0 means no texture is bound. */
type TextureHandle uint32

/** @brief Describes the channel layout of pixel data. */
type TextureFormat int

const (
	TextureFormatRGBA TextureFormat = iota
	TextureFormatRGB
	TextureFormatRed
)

/** @brief Describes how the GPU stores the texture. */
type TextureInternalFormat int

const (
	/** @brief 8 bits per channel, normalized. */
	TextureInternalFormatRGBA8 TextureInternalFormat = iota
	/** @brief 16 bit float per channel. */
	TextureInternalFormatRGBA16F
	/** @brief 32 bit float per channel. */
	TextureInternalFormatRGBA32F
)

/** @brief The component type of uploaded pixel data. */
type TextureDataType int

const (
	TextureDataTypeUnsignedByte TextureDataType = iota
	TextureDataTypeFloat
)

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
	TextureRepeatClampToBorder  TextureRepeat = 0x4
)

/**
 * @brief Options used when creating a texture or an off-screen framebuffer.
 */
type TextureOptions struct {
	/** @brief Channel layout of the uploaded pixels. */
	Format TextureFormat
	/** @brief Storage format on the GPU. */
	InternalFormat TextureInternalFormat
	/** @brief Component type of the uploaded pixels. */
	DataType TextureDataType
	/** @brief Texture filtering mode for magnification. */
	MagFilter TextureFilter
	/** @brief Texture filtering mode for minification. */
	MinFilter TextureFilter
	/** @brief The repeat mode on the X (or U, or S) axis. */
	WrapX TextureRepeat
	/** @brief The repeat mode on the Y (or V, or T) axis. */
	WrapY TextureRepeat
}

// DefaultTextureOptions returns RGBA8, linear, clamp to edge.
func DefaultTextureOptions() TextureOptions {
	return TextureOptions{
		Format:         TextureFormatRGBA,
		InternalFormat: TextureInternalFormatRGBA8,
		DataType:       TextureDataTypeUnsignedByte,
		MagFilter:      TextureFilterModeLinear,
		MinFilter:      TextureFilterModeLinear,
		WrapX:          TextureRepeatClampToEdge,
		WrapY:          TextureRepeatClampToEdge,
	}
}

// HDRTextureOptions returns float storage used by effect scratch buffers.
func HDRTextureOptions() TextureOptions {
	o := DefaultTextureOptions()
	o.InternalFormat = TextureInternalFormatRGBA16F
	o.DataType = TextureDataTypeFloat
	return o
}

// NearestTextureOptions returns RGBA8 pixel-art friendly options.
func NearestTextureOptions() TextureOptions {
	o := DefaultTextureOptions()
	o.MagFilter = TextureFilterModeNearest
	o.MinFilter = TextureFilterModeNearest
	return o
}

/** @brief Backend handle of a framebuffer. 0 is the window surface. */
type FramebufferHandle uint32

const WindowFramebuffer FramebufferHandle = 0
