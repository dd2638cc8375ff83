package systems

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

const (
	DefaultShapeShader    = "basic"
	DefaultTexturedShader = "textured"
	DefaultSpriteShader   = "sprite"
	DefaultTextShader     = "text"
)

type RendererConfig struct {
	/** @brief Capacity of a sprite batch, in instances. */
	MaxInstancesPerBatch uint32
	/** @brief Capacity of a vertex batch, in vertices. */
	MaxVerticesPerBatch uint32
	/** @brief Directory searched for shader sources before the builtins. */
	ShaderSearchPath string
	/** @brief Outline the bounding box of every drawn text. */
	DebugTextBounds bool
}

func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		MaxInstancesPerBatch: DefaultMaxInstancesPerBatch,
		MaxVerticesPerBatch:  DefaultMaxVerticesPerBatch,
	}
}

/**
 * @brief Issues draws against one render target. Draw calls only stage data
 * into batches, DrawAll flushes them: the vertex batches first, then the sprite
 * batches. View and BlendParams apply to every flush of the next DrawAll.
 */
type Renderer struct {
	ID uuid.UUID
	/** @brief The camera used by every flush. */
	View components.View
	/** @brief The blend state applied before flushing. */
	BlendParams     metadata.BlendParams
	DebugTextBounds bool

	backend    renderer.Backend
	target     renderer.RenderTarget
	shaders    *ShaderSystem
	textures   *TextureSystem
	registries [metadata.LayoutCount]*BatchRegistry
	immediate  *Batch
	stats      metadata.RendererStats
}

/**
 * @brief Creates a renderer drawing into target with a view covering the
 * target in pixels, origin at the bottom-left.
 */
func NewRenderer(backend renderer.Backend, target renderer.RenderTarget, textures *TextureSystem, config RendererConfig) *Renderer {
	if config.MaxInstancesPerBatch == 0 {
		config.MaxInstancesPerBatch = DefaultMaxInstancesPerBatch
	}
	if config.MaxVerticesPerBatch == 0 {
		config.MaxVerticesPerBatch = DefaultMaxVerticesPerBatch
	}
	w, h := target.GetSize()
	r := &Renderer{
		ID:              uuid.New(),
		View:            components.NewViewFromRect(math.NewRect(0, 0, float32(w), float32(h))),
		BlendParams:     metadata.BlendAlpha(),
		DebugTextBounds: config.DebugTextBounds,
		backend:         backend,
		target:          target,
		shaders:         NewShaderSystem(&ShaderSystemConfig{SearchPath: config.ShaderSearchPath}, backend),
		textures:        textures,
	}
	r.registries[metadata.LayoutVertex] = NewBatchRegistry(backend, metadata.LayoutVertex, config.MaxVerticesPerBatch)
	r.registries[metadata.LayoutSprite] = NewBatchRegistry(backend, metadata.LayoutSprite, config.MaxInstancesPerBatch)
	return r
}

func (r *Renderer) GetTarget() renderer.RenderTarget {
	return r.target
}

func (r *Renderer) GetShaders() *ShaderSystem {
	return r.shaders
}

func (r *Renderer) GetTextures() *TextureSystem {
	return r.textures
}

func (r *Renderer) GetRegistry(layout metadata.LayoutID) *BatchRegistry {
	return r.registries[layout]
}

// GetSize returns the size of the render target in pixels.
func (r *Renderer) GetSize() math.Vec2 {
	w, h := r.target.GetSize()
	return math.NewVec2(float32(w), float32(h))
}

func (r *Renderer) prepare(target renderer.RenderTarget) (math.Mat4, math.Vec2) {
	w, h := target.GetSize()
	target.Bind()
	x, y, vw, vh := r.View.ViewportPixels(w, h)
	r.backend.Viewport(x, y, vw, vh)
	r.backend.SetBlend(r.BlendParams)
	return r.View.GetMatrix(), math.NewVec2(float32(w), float32(h))
}

/**
 * @brief Flushes every staged batch into the renderer's own target.
 */
func (r *Renderer) DrawAll(frame metadata.FrameContext) {
	r.DrawAllInto(frame, r.target)
}

/**
 * @brief Flushes every staged batch into another target. Layers without
 * effects use it to composite their canvas in a single pass.
 */
func (r *Renderer) DrawAllInto(frame metadata.FrameContext, target renderer.RenderTarget) {
	before := r.backend.Stats()
	viewProjection, resolution := r.prepare(target)
	r.registries[metadata.LayoutVertex].RenderAll(r.shaders, viewProjection, frame, resolution)
	r.registries[metadata.LayoutSprite].RenderAll(r.shaders, viewProjection, frame, resolution)

	r.stats = r.backend.Stats().Sub(before)
	r.stats.Batches = r.registries[metadata.LayoutVertex].BatchCount() + r.registries[metadata.LayoutSprite].BatchCount()
}

/**
 * @brief Draws a triangle list right away into the renderer's target with the
 * current View and BlendParams. Staged batches are left untouched.
 */
func (r *Renderer) DrawImmediate(frame metadata.FrameContext, vertices []metadata.Vertex, shader string, textures ...metadata.TextureHandle) {
	if len(vertices) == 0 {
		return
	}
	id, ok := r.shaders.CheckShader(shader)
	if !ok {
		return
	}
	sh, _ := r.shaders.Get(id)
	if sh.Layout != metadata.LayoutVertex {
		core.LogWarn("shader `%s` expects %s data, immediate draws are vertex lists", shader, sh.Layout)
		return
	}
	if r.immediate == nil {
		b, err := newBatch(r.backend, metadata.LayoutVertex, metadata.BatchConfiguration{DrawType: metadata.DrawTypeStream},
			r.registries[metadata.LayoutVertex].Capacity())
		if err != nil {
			core.LogError("immediate batch: %s", err)
			panic(err)
		}
		r.immediate = b
	}
	config := metadata.BatchConfiguration{Shader: id, DrawType: metadata.DrawTypeStream}
	copyTextures(&config, textures)
	b := r.immediate
	b.Configuration = config
	b.Clear()
	b.AddVertices(vertices)

	viewProjection, resolution := r.prepare(r.target)
	b.Flush(r.shaders, sh, viewProjection, frame, resolution)
	b.Clear()
}

/**
 * @brief Clears the target and empties every dynamic and stream batch.
 * Static batches keep their content.
 */
func (r *Renderer) Clear(colour math.Vec4) {
	r.target.Clear(colour)
	for _, reg := range r.registries {
		reg.Clear()
	}
}

// ResetBatches drops every batch, static ones included.
func (r *Renderer) ResetBatches() {
	for _, reg := range r.registries {
		reg.Reset()
	}
}

// Stats returns the counters of the last DrawAll.
func (r *Renderer) Stats() metadata.RendererStats {
	return r.stats
}

// MouseToWorld maps a screen position (pixels, origin top-left) into world space.
func (r *Renderer) MouseToWorld(screen math.Vec2) math.Vec2 {
	w, h := r.target.GetSize()
	return r.View.ScreenToWorld(screen, w, h)
}

// WorldToScreen maps a world position to screen pixels, origin top-left.
func (r *Renderer) WorldToScreen(world math.Vec2) math.Vec2 {
	w, h := r.target.GetSize()
	return r.View.WorldToScreen(world, w, h)
}

// GetMouseInWorld returns the cursor position in world space.
func (r *Renderer) GetMouseInWorld() math.Vec2 {
	x, y := core.InputGetMousePosition()
	return r.MouseToWorld(math.NewVec2(x, y))
}

// RefreshShaders reloads the shaders whose source files changed.
func (r *Renderer) RefreshShaders() int {
	return r.shaders.RefreshModified()
}

func (r *Renderer) Destroy() {
	r.ResetBatches()
	if r.immediate != nil {
		r.immediate.Destroy()
		r.immediate = nil
	}
	r.shaders.Shutdown()
}

func copyTextures(config *metadata.BatchConfiguration, textures []metadata.TextureHandle) {
	if len(textures) > metadata.MaxBatchTextures {
		core.LogWarn("%d textures given, only the first %d are bound", len(textures), metadata.MaxBatchTextures)
	}
	copy(config.Textures[:], textures)
}
