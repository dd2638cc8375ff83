package loaders

import (
	"fmt"
	"image"
	"io"
	"os"

	// decoders registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/** @brief Parameters accepted by the image loader. */
type ImageResourceParams struct {
	/** @brief Flip the rows so the first row is the image bottom. */
	FlipY bool
}

type ImageLoader struct{}

// DecodeImage decodes any registered format into tightly packed RGBA8, first row on top.
func DecodeImage(r io.Reader) (*metadata.ImageResourceData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ImageToResourceData(img), nil
}

// ImageToResourceData converts an image to RGBA8, first row on top.
func ImageToResourceData(img image.Image) *metadata.ImageResourceData {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(b.Dx()),
		Height:       uint32(b.Dy()),
		Pixels:       rgba.Pix,
	}
}

// LoadImageFile opens and decodes an image file.
func LoadImageFile(path string) (*metadata.ImageResourceData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("image `%s`: %w", path, err)
	}
	return data, nil
}

// flipRows reverses the row order in place.
func flipRows(data *metadata.ImageResourceData) {
	stride := int(data.Width) * 4
	row := make([]uint8, stride)
	for top, bottom := 0, int(data.Height)-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := data.Pixels[top*stride : (top+1)*stride]
		b := data.Pixels[bottom*stride : (bottom+1)*stride]
		copy(row, a)
		copy(a, b)
		copy(b, row)
	}
}

func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := LoadImageFile(path)
	if err != nil {
		return nil, err
	}
	if p, ok := params.(*ImageResourceParams); ok && p.FlipY {
		flipRows(data)
	}
	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		Type:     metadata.ResourceTypeImage,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (il *ImageLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
