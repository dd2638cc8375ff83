package systems

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/anima2d/engine/assets/loaders"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/**
 * @brief A GPU texture registered by name.
 */
type Texture struct {
	Name    string
	Handle  metadata.TextureHandle
	Width   uint32
	Height  uint32
	Options metadata.TextureOptions
}

func (t *Texture) GetHandle() metadata.TextureHandle {
	return t.Handle
}

func (t *Texture) GetSize() math.Vec2 {
	return math.NewVec2(float32(t.Width), float32(t.Height))
}

type TextureSystem struct {
	DefaultTexture *Texture
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*Texture
	backend                renderer.Backend
}

func NewTextureSystem(backend renderer.Backend) (*TextureSystem, error) {
	ts := &TextureSystem{
		RegisteredTextureTable: make(map[string]*Texture),
		backend:                backend,
	}
	// opaque white, sampled by untextured sprites
	white, err := ts.CreateFromPixels(metadata.DEFAULT_TEXTURE_NAME, 1, 1, metadata.NearestTextureOptions(), []uint8{255, 255, 255, 255})
	if err != nil {
		core.LogError("failed to create the default texture: %s", err)
		return nil, err
	}
	ts.DefaultTexture = white
	return ts, nil
}

func (ts *TextureSystem) Shutdown() error {
	for name, t := range ts.RegisteredTextureTable {
		ts.backend.TextureDestroy(t.Handle)
		delete(ts.RegisteredTextureTable, name)
	}
	ts.DefaultTexture = nil
	return nil
}

/**
 * @brief Creates an empty texture, e.g. to render into.
 */
func (ts *TextureSystem) Create(name string, width, height uint32, options metadata.TextureOptions) (*Texture, error) {
	return ts.CreateFromPixels(name, width, height, options, nil)
}

/**
 * @brief Creates a texture from tightly packed pixels in the options format,
 * replacing any texture registered under the same name.
 */
func (ts *TextureSystem) CreateFromPixels(name string, width, height uint32, options metadata.TextureOptions, pixels []uint8) (*Texture, error) {
	handle, err := ts.backend.TextureCreate(width, height, options, pixels)
	if err != nil {
		return nil, fmt.Errorf("texture `%s`: %w", name, err)
	}
	if old, ok := ts.RegisteredTextureTable[name]; ok {
		ts.backend.TextureDestroy(old.Handle)
	}
	t := &Texture{Name: name, Handle: handle, Width: width, Height: height, Options: options}
	ts.RegisteredTextureTable[name] = t
	return t, nil
}

func (ts *TextureSystem) upload(name string, img *metadata.ImageResourceData, options metadata.TextureOptions) (*Texture, error) {
	options.Format = metadata.TextureFormatRGBA
	options.DataType = metadata.TextureDataTypeUnsignedByte
	return ts.CreateFromPixels(name, img.Width, img.Height, options, img.Pixels)
}

/**
 * @brief Decodes an image file and uploads it.
 *
 * @param name The name to register the texture under.
 * @param path The image file.
 * @param options Sampling options. Format and data type are forced to RGBA8.
 */
func (ts *TextureSystem) LoadFromFile(name, path string, options metadata.TextureOptions) (*Texture, error) {
	img, err := loaders.LoadImageFile(path)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	return ts.upload(name, img, options)
}

/**
 * @brief Decodes several image files in parallel, then uploads them one by one
 * on the calling thread, in name order.
 *
 * @param files Texture names mapped to image paths.
 */
func (ts *TextureSystem) LoadAll(files map[string]string, options metadata.TextureOptions) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	images := make([]*metadata.ImageResourceData, len(names))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, name := range names {
		g.Go(func() error {
			img, err := loaders.LoadImageFile(files[name])
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		core.LogError("texture decode: %s", err)
		return err
	}

	for i, name := range names {
		if _, err := ts.upload(name, images[i], options); err != nil {
			return err
		}
	}
	return nil
}

func (ts *TextureSystem) Get(name string) (*Texture, bool) {
	t, ok := ts.RegisteredTextureTable[name]
	return t, ok
}

// Bind binds a registered texture to a slot. Unknown names bind the default texture.
func (ts *TextureSystem) Bind(name string, slot uint32) {
	t, ok := ts.Get(name)
	if !ok {
		core.LogWarn("texture `%s` not found, binding the default texture", name)
		t = ts.DefaultTexture
	}
	ts.backend.TextureBind(t.Handle, slot)
}

func (ts *TextureSystem) Destroy(name string) {
	t, ok := ts.RegisteredTextureTable[name]
	if !ok || t == ts.DefaultTexture {
		return
	}
	ts.backend.TextureDestroy(t.Handle)
	delete(ts.RegisteredTextureTable, name)
}
