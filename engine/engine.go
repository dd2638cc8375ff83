package engine

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync/atomic"

	"github.com/spaghettifunk/anima2d/engine/assets"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/layers"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/platform"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/renderer/opengl"
	"github.com/spaghettifunk/anima2d/engine/renderer/soft"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// NewBackend returns the backend registered under name.
func NewBackend(name string) (renderer.Backend, error) {
	switch name {
	case BackendOpenGL:
		return opengl.New(), nil
	case BackendSoftware:
		return soft.New(), nil
	}
	return nil, fmt.Errorf("backend `%s`: %w", name, core.ErrUnknownBackend)
}

type pixelReader interface {
	ReadPixels(target metadata.FramebufferHandle) ([]uint8, uint32, uint32, error)
}

type Engine struct {
	currentStage  Stage
	config        *ApplicationConfig
	gameInstance  *Game
	isRunning     atomic.Bool
	isSuspended   bool
	platform      *platform.Platform
	backend       renderer.Backend
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	windowTarget  *renderer.WindowTarget
	window        *systems.Renderer
	layers        *layers.LayersHolder
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.FrameMetrics
	frameNumber   uint64
	handlers      map[core.EventCode]uint32
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		return nil, err
	}
	core.LogConfigure(config.LoggerConfig())

	backend, err := NewBackend(config.Application.Backend)
	if err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		config:       config,
		gameInstance: g,
		backend:      backend,
		assetManager: am,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		width:        config.Application.StartWidth,
		height:       config.Application.StartHeight,
		handlers:     make(map[core.EventCode]uint32),
	}
	if config.Application.Backend == BackendOpenGL {
		e.platform = platform.New()
	}
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.config

	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	e.handlers[core.EVENT_CODE_APPLICATION_QUIT] = core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.handlers[core.EVENT_CODE_KEY_PRESSED] = core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.handlers[core.EVENT_CODE_RESIZED] = core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if e.platform != nil {
		if err := e.platform.Startup(platform.WindowConfig{
			Name:   config.Application.Name,
			X:      config.Application.StartPosX,
			Y:      config.Application.StartPosY,
			Width:  config.Application.StartWidth,
			Height: config.Application.StartHeight,
			OpenGL: true,
			VSync:  config.Application.VSync,
		}); err != nil {
			return err
		}
		// HiDPI windows report a larger drawable than the requested size
		e.width, e.height = e.platform.GetFramebufferSize()
	}

	if err := e.backend.Initialize(&metadata.RendererBackendConfig{
		ApplicationName: config.Application.Name,
		Width:           e.width,
		Height:          e.height,
		VSync:           config.Application.VSync,
	}); err != nil {
		core.LogFatal("renderer backend: %s", err)
		return err
	}

	if config.Assets.Dir != "" {
		if _, err := os.Stat(config.Assets.Dir); err == nil {
			if err := e.assetManager.Initialize(config.Assets.Dir, config.Assets.Watch); err != nil {
				return err
			}
		} else {
			core.LogWarn("assets directory `%s` not available: %s", config.Assets.Dir, err)
		}
	}

	sm, err := systems.NewSystemManager(e.backend, config.RendererConfig())
	if err != nil {
		return err
	}
	e.systemManager = sm
	e.windowTarget = renderer.NewWindowTarget(e.backend, e.width, e.height)
	e.window = sm.NewRenderer(e.windowTarget)
	e.layers = layers.NewLayersHolder(sm, e.width, e.height)

	g := e.gameInstance
	g.SystemManager = sm
	g.AssetManager = e.assetManager
	g.Window = e.window
	g.Layers = e.layers

	if g.FnInitialize != nil {
		if err := g.FnInitialize(); err != nil {
			return err
		}
	}
	if g.FnOnResize != nil {
		if err := g.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Stop ends the frame loop after the current frame. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)
	e.clock.Start()

	limit := e.config.Application.FrameLimit
	for e.isRunning.Load() {
		if e.platform != nil && !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}
		if e.isSuspended {
			if e.platform != nil {
				e.platform.Sleep(10)
			}
			continue
		}

		delta := e.clock.Tick()
		currentTime := e.clock.Elapsed()

		if err := e.frame(currentTime, delta); err != nil {
			core.LogError("frame %d failed, shutting down: %s", e.frameNumber, err)
			e.isRunning.Store(false)
			return err
		}

		e.clock.Update()
		e.metrics.Update(e.clock.Elapsed() - currentTime)

		// input state is copied last so this frame saw every transition
		_ = core.InputUpdate(delta)
		e.frameNumber++
		if limit > 0 && e.frameNumber >= limit {
			e.isRunning.Store(false)
		}
	}
	return nil
}

func (e *Engine) frame(currentTime, delta float64) error {
	g := e.gameInstance
	frame := metadata.FrameContext{
		Time:        float32(currentTime),
		DeltaTime:   float32(delta),
		FrameNumber: e.frameNumber,
	}

	if g.FnUpdate != nil {
		if err := g.FnUpdate(delta); err != nil {
			return fmt.Errorf("update: %w", err)
		}
	}

	if err := e.backend.BeginFrame(frame); err != nil {
		return err
	}
	e.window.Clear(g.ClearColour)
	e.layers.ClearAll()
	if g.FnRender != nil {
		if err := g.FnRender(frame); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	e.layers.DrawInto(frame, e.window)
	e.window.DrawAll(frame)
	if err := e.backend.EndFrame(frame); err != nil {
		return err
	}
	if e.platform != nil {
		e.platform.SwapBuffers()
	}

	e.reloadChanged()
	return nil
}

// reloadChanged rebuilds the shaders whose sources changed on disk since the last frame.
func (e *Engine) reloadChanged() {
	shaders := 0
	for path, kind := range e.assetManager.Changed() {
		if kind == metadata.ResourceTypeShader {
			core.LogDebug("shader source `%s` changed", path)
			shaders++
		}
	}
	if shaders == 0 {
		return
	}
	if n := e.systemManager.RefreshShaders(); n > 0 {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_SHADERS_CHANGED, Data: n})
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	g := e.gameInstance
	if g.FnShutdown != nil {
		if err := g.FnShutdown(); err != nil {
			core.LogError("game shutdown: %s", err)
		}
	}
	if e.config.Application.Capture != "" {
		if err := e.capture(e.config.Application.Capture); err != nil {
			core.LogError("capture `%s`: %s", e.config.Application.Capture, err)
		}
	}

	for code, handle := range e.handlers {
		core.EventUnregister(code, handle)
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}

	var errs []error
	if e.layers != nil {
		e.layers.Destroy()
	}
	if e.systemManager != nil {
		errs = append(errs, e.systemManager.Shutdown())
	}
	errs = append(errs, e.assetManager.Shutdown())
	errs = append(errs, e.backend.Shutdown())
	if e.platform != nil {
		errs = append(errs, e.platform.Shutdown())
	}
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

// capture writes the window surface to a PNG. Only backends that can read the window back support it.
func (e *Engine) capture(path string) error {
	reader, ok := e.backend.(pixelReader)
	if !ok {
		return fmt.Errorf("backend `%s` cannot read the window back", e.config.Application.Backend)
	}
	pixels, w, h, err := reader.ReadPixels(metadata.WindowFramebuffer)
	if err != nil {
		return err
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	stride := int(w) * 4
	for y := 0; y < int(h); y++ {
		// read back rows start at the bottom
		src := pixels[(int(h)-1-y)*stride : (int(h)-y)*stride]
		copy(img.Pix[y*img.Stride:], src)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	core.LogInfo("frame %d captured to `%s`", e.frameNumber, path)
	return f.Close()
}

func (e *Engine) GetStage() Stage {
	return e.currentStage
}

// GetFramebufferSize returns the width and height (in this order) of the window surface.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) GetFrameNumber() uint64 {
	return e.frameNumber
}

// GetMetrics returns the frames per second and the average frame time in milliseconds.
func (e *Engine) GetMetrics() (float64, float64) {
	return e.metrics.Frame()
}

func (e *Engine) onEvent(context core.EventContext) bool {
	if context.Type == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// other listeners may care about quitting too
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	e.resize(se.WindowWidth, se.WindowHeight)
	return false
}

/**
 * @brief Applies a new window size. A zero size means the window was
 * minimized: the loop suspends and the previous size is kept.
 */
func (e *Engine) resize(width, height uint32) {
	if width == 0 || height == 0 {
		if !e.isSuspended {
			core.LogInfo("Window minimized, suspending application.")
		}
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if width == e.width && height == e.height {
		return
	}
	core.LogDebug("Window resize: %d, %d", width, height)
	e.width, e.height = width, height

	if err := e.backend.Resized(width, height); err != nil {
		core.LogError("backend resize: %s", err)
	}
	e.windowTarget.Resize(width, height)
	e.window.View = components.NewViewFromRect(math.NewRect(0, 0, float32(width), float32(height)))
	if err := e.layers.Resize(width, height); err != nil {
		core.LogError("layers resize: %s", err)
	}
	if g := e.gameInstance; g.FnOnResize != nil {
		if err := g.FnOnResize(width, height); err != nil {
			core.LogError("game resize: %s", err)
		}
	}
}
