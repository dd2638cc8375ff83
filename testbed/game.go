package testbed

import (
	"fmt"

	"golang.org/x/image/font/gofont/gomono"

	"github.com/spaghettifunk/anima2d/engine"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/effects"
	"github.com/spaghettifunk/anima2d/engine/layers"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/particles"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

const (
	layerBackground = "background"
	layerWorld      = "world"
	layerLight      = "light"

	starCount    = 400
	orbCount     = 12
	panSpeed     = 300
	particleRate = 120
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	// shared by the world and light layers
	camera components.View
	rng    *math.Random

	sparks  *particles.System
	hud     *systems.Text
	elapsed float64
	time    float32

	width  uint32
	height uint32
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			ClearColour:       math.NewVec4(0, 0, 0, 1),
			State: &gameState{
				rng: math.NewRandom(42),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	s := g.state()
	w, h := g.Window.GetTarget().GetSize()
	s.width, s.height = w, h
	s.camera = components.NewViewFromRect(math.NewRect(0, 0, float32(w), float32(h)))

	background, err := g.Layers.AddLayer(layerBackground, 0, metadata.DefaultTextureOptions())
	if err != nil {
		return err
	}
	background.Background = math.NewColourRGBA8(5, 5, 16, 255)

	world, err := g.Layers.AddLayer(layerWorld, 1, metadata.HDRTextureOptions())
	if err != nil {
		return err
	}
	bloom, err := effects.NewBloom(g.SystemManager, w, h, effects.DefaultBloomConfig())
	if err != nil {
		return err
	}
	world.AddEffect(bloom)

	light, err := g.Layers.AddLayer(layerLight, 2, metadata.DefaultTextureOptions())
	if err != nil {
		return err
	}
	combine, err := effects.NewLightCombine(g.SystemManager, w, h, math.NewVec4(0.35, 0.35, 0.45, 1), 2)
	if err != nil {
		return err
	}
	light.AddEffect(combine)

	// the stars never change: staged once, kept across clears
	g.drawStars(background)

	s.sparks = particles.NewSystem(4096)
	s.sparks.SpawnRate = particleRate
	s.sparks.Lifetime = 2.5
	s.sparks.Origin = math.NewVec2(float32(w)/2, float32(h)/2)
	// a fountain opening 60 degrees either side of up
	burst := particles.RandomBurst(s.rng, math.DegToRad(30), math.DegToRad(150), 40, 160)
	s.sparks.OnSpawn = func(e particles.Entity, p *particles.Particle) {
		burst(e, p)
		p.Scale = math.NewVec2(4, 4)
		p.Acceleration = math.NewVec2(0, -60)
		p.AngularVelocity = s.rng.InRange(-3, 3)
		p.Colour = math.NewVec4(1.6, s.rng.InRange(0.6, 1.2), 0.3, 1)
	}
	s.sparks.OnUpdate = func(_ particles.Entity, p *particles.Particle, _ float32) {
		p.Colour.W = 1 - p.Age/p.Lifetime
	}

	font, err := g.SystemManager.FontSystem().LoadSystemFont("hud", gomono.TTF, 16)
	if err != nil {
		return err
	}
	s.hud = systems.NewText(font, "anima2d")
	s.hud.Colour = math.NewVec4(0.9, 0.9, 0.9, 1)
	return nil
}

func (g *TestGame) drawStars(background *layers.DrawLayer) {
	s := g.state()
	canvas := background.GetCanvas()
	for i := 0; i < starCount; i++ {
		p := s.rng.Vec2InRange(math.NewVec2Zero(), math.NewVec2(float32(s.width), float32(s.height)))
		size := s.rng.InRange(1, 3)
		c := s.rng.InRange(0.4, 1)
		canvas.DrawRectangle(math.NewRect(p.X, p.Y, size, size), math.NewVec4(c, c, c, 1), metadata.DrawTypeStatic)
	}
}

func (g *TestGame) Update(deltaTime float64) error {
	s := g.state()
	dt := float32(deltaTime)
	s.time += dt

	// drag with the left button, or use the arrow keys
	if core.InputIsButtonDown(core.BUTTON_LEFT) && core.InputWasButtonDown(core.BUTTON_LEFT) {
		x, y := core.InputGetMousePosition()
		px, py := core.InputGetPreviousMousePosition()
		w, h := g.Window.GetTarget().GetSize()
		now := s.camera.ScreenToWorld(math.NewVec2(x, y), w, h)
		before := s.camera.ScreenToWorld(math.NewVec2(px, py), w, h)
		s.camera.Move(before.Sub(now))
	}
	var pan math.Vec2
	if core.InputIsKeyDown(core.KEY_LEFT) {
		pan.X -= 1
	}
	if core.InputIsKeyDown(core.KEY_RIGHT) {
		pan.X += 1
	}
	if core.InputIsKeyDown(core.KEY_UP) {
		pan.Y += 1
	}
	if core.InputIsKeyDown(core.KEY_DOWN) {
		pan.Y -= 1
	}
	s.camera.Move(pan.MulScalar(panSpeed * dt))

	if core.InputIsKeyDown(core.KEY_SPACE) && !core.InputWasKeyDown(core.KEY_SPACE) {
		if err := g.Layers.ToggleLayer(layerLight); err != nil {
			return err
		}
	}

	s.sparks.Update(dt)

	s.elapsed += deltaTime
	if s.elapsed >= 1 {
		s.elapsed = 0
		st := g.SystemManager.Stats()
		s.hud.String = fmt.Sprintf("anima2d  particles %d\ndraw calls %d  batches %d", s.sparks.Count(), st.DrawCalls, st.Batches)
	}
	return nil
}

func (g *TestGame) Render(frame metadata.FrameContext) error {
	s := g.state()

	world, _ := g.Layers.GetLayer(layerWorld)
	canvas := world.GetCanvas()
	canvas.View = s.camera
	centre := math.NewVec2(float32(s.width)/2, float32(s.height)/2)
	for i := 0; i < orbCount; i++ {
		angle := s.time*0.5 + float32(i)*2*math.K_PI/orbCount
		p := centre.Add(math.NewVec2(220, 0).Rotated(angle))
		canvas.DrawCircle(p, 18, math.NewVec4(0.3, 0.8, 1.4, 1), 32, metadata.DrawTypeDynamic)
		canvas.DrawCircleOutline(p, 26, 2, math.NewVec4(0.2, 0.4, 0.9, 1), 32, metadata.DrawTypeDynamic)
	}
	canvas.DrawRotatedRectangle(centre, math.NewVec2(60, 60), s.time, math.NewVec4(1.2, 0.4, 0.8, 1), metadata.DrawTypeDynamic)
	s.sparks.Draw(canvas, metadata.DrawTypeStream)

	light, _ := g.Layers.GetLayer(layerLight)
	lights := light.GetCanvas()
	lights.View = s.camera
	mouse := s.camera.ScreenToWorld(g.cursor(), s.width, s.height)
	lights.DrawCircle(mouse, 160, math.NewVec4(1, 0.95, 0.8, 1), 48, metadata.DrawTypeDynamic)
	lights.DrawCircle(centre, 120, math.NewVec4(0.8, 0.5, 1, 1), 48, metadata.DrawTypeDynamic)

	s.hud.Transform.SetPosition(math.NewVec2(10, float32(s.height)-24))
	g.Window.DrawText(s.hud, "", metadata.DrawTypeDynamic)
	return nil
}

func (g *TestGame) cursor() math.Vec2 {
	x, y := core.InputGetMousePosition()
	return math.NewVec2(x, y)
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	s := g.state()
	s.width, s.height = width, height
	// keep one world unit per pixel around the current centre
	s.camera.SetSize(math.NewVec2(float32(width), float32(height)))
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	g.state().sparks.Clear()
	return nil
}
