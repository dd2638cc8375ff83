package particles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/renderer/soft"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

func TestSpawnIsBoundedByCapacity(t *testing.T) {
	s := NewSystem(4)
	s.Origin = math.NewVec2(3, 4)

	assert.Equal(t, 3, s.Spawn(3))
	assert.Equal(t, 1, s.Spawn(3))
	assert.Equal(t, 4, s.Count())

	p, ok := s.Get(0)
	require.True(t, ok)
	assert.Equal(t, math.NewVec2(3, 4), p.Position)
	assert.Equal(t, float32(1), p.Lifetime)
}

func TestKillKeepsHandlesStable(t *testing.T) {
	s := NewSystem(4)
	s.OnSpawn = func(e Entity, p *Particle) {
		p.Position = math.NewVec2(float32(e), 0)
	}
	var died []Entity
	s.OnDeath = func(e Entity, _ *Particle) { died = append(died, e) }
	s.Spawn(4)

	assert.True(t, s.Kill(1))
	assert.False(t, s.Kill(1))
	assert.Equal(t, []Entity{1}, died)
	assert.Equal(t, 3, s.Count())

	// the last particle moved into the freed slot but keeps its handle
	p, ok := s.Get(3)
	require.True(t, ok)
	assert.Equal(t, float32(3), p.Position.X)
	_, ok = s.Get(1)
	assert.False(t, ok)

	seen := map[Entity]float32{}
	s.ForEach(func(e Entity, p *Particle) { seen[e] = p.Position.X })
	assert.Equal(t, map[Entity]float32{0: 0, 2: 2, 3: 3}, seen)

	// the freed handle is handed out again
	assert.Equal(t, 1, s.Spawn(1))
	_, ok = s.Get(1)
	assert.True(t, ok)
}

func TestUpdateIntegratesAndExpires(t *testing.T) {
	s := NewSystem(8)
	s.Lifetime = 1
	s.OnSpawn = func(e Entity, p *Particle) {
		p.Velocity = math.NewVec2(2, 0)
		p.Acceleration = math.NewVec2(0, 4)
		p.AngularVelocity = 1
		if e == 0 {
			p.Lifetime = 0.25
		}
	}
	updates := 0
	s.OnUpdate = func(Entity, *Particle, float32) { updates++ }
	var died []Entity
	s.OnDeath = func(e Entity, _ *Particle) { died = append(died, e) }
	s.Spawn(2)

	s.Update(0.5)
	assert.Equal(t, []Entity{0}, died)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, 1, updates)

	p, ok := s.Get(1)
	require.True(t, ok)
	assert.InDelta(t, 1, p.Position.X, 1e-5)
	assert.InDelta(t, 1, p.Position.Y, 1e-5)
	assert.InDelta(t, 2, p.Velocity.Y, 1e-5)
	assert.InDelta(t, 0.5, p.Angle, 1e-5)

	s.Update(0.5)
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, []Entity{0, 1}, died)
}

func TestKillFromUpdateCallback(t *testing.T) {
	s := NewSystem(4)
	s.Lifetime = 10
	visits := map[Entity]int{}
	s.OnUpdate = func(e Entity, _ *Particle, _ float32) {
		visits[e]++
		assert.True(t, s.Kill(e))
		assert.False(t, s.Kill(e))
		// the partner is killed before its turn and must not be visited
		if e == 0 {
			assert.True(t, s.Kill(3))
		}
	}
	var died []Entity
	s.OnDeath = func(e Entity, _ *Particle) { died = append(died, e) }
	s.Spawn(4)

	s.Update(0.1)
	assert.Equal(t, map[Entity]int{0: 1, 1: 1, 2: 1}, visits)
	assert.ElementsMatch(t, []Entity{0, 1, 2, 3}, died)
	assert.Equal(t, 0, s.Count())

	assert.Equal(t, 4, s.Spawn(4))
}

func TestEmitterSpawnRate(t *testing.T) {
	s := NewSystem(100)
	s.Lifetime = 10
	s.SpawnRate = 10

	s.Update(0.25)
	assert.Equal(t, 2, s.Count())
	s.Update(0.25)
	assert.Equal(t, 5, s.Count())

	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 100, s.Spawn(200))
}

func TestRandomBurst(t *testing.T) {
	s := NewSystem(32)
	s.OnSpawn = RandomBurst(math.NewRandom(7), 0, math.K_HALF_PI, 1, 2)
	s.Spawn(32)

	s.ForEach(func(_ Entity, p *Particle) {
		speed := p.Velocity.Length()
		assert.GreaterOrEqual(t, speed, float32(0.999))
		assert.LessOrEqual(t, speed, float32(2.001))
		assert.GreaterOrEqual(t, p.Velocity.X, float32(-1e-5))
		assert.GreaterOrEqual(t, p.Velocity.Y, float32(-1e-5))
	})
}

func TestDrawStagesEveryParticle(t *testing.T) {
	b := soft.New()
	require.NoError(t, b.Initialize(&metadata.RendererBackendConfig{Width: 8, Height: 8}))
	sm, err := systems.NewSystemManager(b, systems.DefaultRendererConfig())
	require.NoError(t, err)
	defer sm.Shutdown()
	r, _, err := sm.NewOffscreenRenderer(8, 8, metadata.DefaultTextureOptions())
	require.NoError(t, err)

	s := NewSystem(16)
	s.Spawn(5)
	s.Draw(r, metadata.DrawTypeStream)
	vertices := r.GetRegistry(metadata.LayoutVertex)
	require.Len(t, vertices.Configurations(), 1)
	assert.Equal(t, uint32(5*6), vertices.Batches(vertices.Configurations()[0])[0].UsedCount())

	s.Texture = sm.TextureSystem().DefaultTexture
	s.Draw(r, metadata.DrawTypeStream)
	sprites := r.GetRegistry(metadata.LayoutSprite)
	require.Len(t, sprites.Configurations(), 1)
	assert.Equal(t, uint32(5), sprites.Batches(sprites.Configurations()[0])[0].UsedCount())
}
