package engine

import (
	"github.com/spaghettifunk/anima2d/engine/assets"
	"github.com/spaghettifunk/anima2d/engine/layers"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

/**
 * @brief The game side of the frame loop. The engine fills the system fields
 * before FnInitialize runs. Every callback is optional.
 */
type Game struct {
	ApplicationConfig *ApplicationConfig
	/** @brief Colour the window is cleared to every frame. */
	ClearColour math.Vec4

	SystemManager *systems.SystemManager
	AssetManager  *assets.AssetManager
	/** @brief Renderer of the window surface, flushed after the layers. */
	Window *systems.Renderer
	Layers *layers.LayersHolder

	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render stages the frame content into the layer canvases and the window renderer.
type Render func(frame metadata.FrameContext) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
