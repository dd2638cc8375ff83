package systems

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/**
 * @brief Owns the systems shared by every renderer (textures, fonts) and keeps
 * track of the renderers it created so shader reloads reach all of them.
 */
type SystemManager struct {
	backend        renderer.Backend
	rendererConfig RendererConfig
	textureSystem  *TextureSystem
	fontSystem     *FontSystem
	renderers      map[uuid.UUID]*Renderer
	// creation order, used for deterministic iteration
	order []uuid.UUID
}

func NewSystemManager(backend renderer.Backend, config RendererConfig) (*SystemManager, error) {
	ts, err := NewTextureSystem(backend)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		backend:        backend,
		rendererConfig: config,
		textureSystem:  ts,
		fontSystem:     NewFontSystem(ts),
		renderers:      make(map[uuid.UUID]*Renderer),
	}, nil
}

func (sm *SystemManager) Backend() renderer.Backend {
	return sm.backend
}

func (sm *SystemManager) TextureSystem() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) FontSystem() *FontSystem {
	return sm.fontSystem
}

func (sm *SystemManager) RendererConfig() RendererConfig {
	return sm.rendererConfig
}

func (sm *SystemManager) track(r *Renderer) *Renderer {
	sm.renderers[r.ID] = r
	sm.order = append(sm.order, r.ID)
	return r
}

/**
 * @brief Creates a renderer drawing into an existing target, e.g. the window.
 */
func (sm *SystemManager) NewRenderer(target renderer.RenderTarget) *Renderer {
	return sm.track(NewRenderer(sm.backend, target, sm.textureSystem, sm.rendererConfig))
}

/**
 * @brief Creates an off-screen frame buffer and a renderer drawing into it.
 *
 * @return The renderer and its frame buffer. The frame buffer is released by ReleaseRenderer.
 */
func (sm *SystemManager) NewOffscreenRenderer(width, height uint32, options metadata.TextureOptions) (*Renderer, *renderer.FrameBuffer, error) {
	fb, err := renderer.NewFrameBuffer(sm.backend, width, height, options)
	if err != nil {
		core.LogError("offscreen renderer: %s", err)
		return nil, nil, err
	}
	return sm.track(NewRenderer(sm.backend, fb, sm.textureSystem, sm.rendererConfig)), fb, nil
}

// ReleaseRenderer destroys a renderer and, for off-screen renderers, its frame buffer.
func (sm *SystemManager) ReleaseRenderer(r *Renderer) {
	if r == nil {
		return
	}
	if _, ok := sm.renderers[r.ID]; !ok {
		return
	}
	delete(sm.renderers, r.ID)
	for i, id := range sm.order {
		if id == r.ID {
			sm.order = append(sm.order[:i], sm.order[i+1:]...)
			break
		}
	}
	r.Destroy()
	if fb, ok := r.GetTarget().(*renderer.FrameBuffer); ok {
		fb.Destroy()
	}
}

// Renderers returns the live renderers in creation order.
func (sm *SystemManager) Renderers() []*Renderer {
	out := make([]*Renderer, 0, len(sm.order))
	for _, id := range sm.order {
		out = append(out, sm.renderers[id])
	}
	return out
}

/**
 * @brief Reloads the changed shaders of every renderer.
 *
 * @return The number of programs rebuilt.
 */
func (sm *SystemManager) RefreshShaders() int {
	n := 0
	for _, r := range sm.Renderers() {
		n += r.RefreshShaders()
	}
	if n > 0 {
		core.LogInfo("%d shader programs reloaded", n)
	}
	return n
}

// Stats sums the last DrawAll counters of every renderer.
func (sm *SystemManager) Stats() metadata.RendererStats {
	var total metadata.RendererStats
	for _, r := range sm.Renderers() {
		total.Add(r.Stats())
	}
	return total
}

func (sm *SystemManager) Shutdown() error {
	// last created first
	renderers := sm.Renderers()
	for i := len(renderers) - 1; i >= 0; i-- {
		sm.ReleaseRenderer(renderers[i])
	}
	if err := sm.fontSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
