package particles

import (
	"github.com/spaghettifunk/anima2d/engine/containers"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

/** @brief Stable handle of a live particle. */
type Entity uint32

type Particle struct {
	Position        math.Vec2
	Velocity        math.Vec2
	Acceleration    math.Vec2
	Scale           math.Vec2
	Angle           float32
	AngularVelocity float32
	Colour          math.Vec4
	/** @brief Seconds since the particle was spawned. */
	Age float32
	/** @brief The particle dies once Age reaches it. Zero lives forever. */
	Lifetime float32
}

type (
	SpawnFunc  func(e Entity, p *Particle)
	UpdateFunc func(e Entity, p *Particle, dt float32)
	DeathFunc  func(e Entity, p *Particle)
)

/**
 * @brief A fixed capacity particle pool. Live particles are packed at the
 * front of the storage, removal swaps the last particle into the hole. Entity
 * handles stay valid until the particle dies, whatever its storage slot.
 */
type System struct {
	/** @brief Where new particles start. */
	Origin math.Vec2
	/** @brief Particles spawned per second by Update. */
	SpawnRate float32
	/** @brief Lifetime given to new particles. */
	Lifetime float32
	/** @brief Drawn as sprites when set, as rectangles otherwise. */
	Texture *systems.Texture
	Shader  string

	OnSpawn  SpawnFunc
	OnUpdate UpdateFunc
	OnDeath  DeathFunc

	particles []Particle
	// packed slot -> entity
	entities []Entity
	// entity -> packed slot, -1 when dead
	slots       []int
	free        *containers.RingQueue[Entity]
	accumulator float32

	// kills requested by callbacks while Update walks the storage
	updating bool
	killed   []bool
	pending  []Entity
}

func NewSystem(capacity int) *System {
	s := &System{
		Lifetime:  1,
		particles: make([]Particle, 0, capacity),
		entities:  make([]Entity, 0, capacity),
		slots:     make([]int, capacity),
		killed:    make([]bool, capacity),
		free:      containers.NewRingQueue[Entity](capacity),
	}
	for i := 0; i < capacity; i++ {
		s.slots[i] = -1
		_ = s.free.Enqueue(Entity(i))
	}
	return s
}

func (s *System) Count() int {
	return len(s.particles)
}

func (s *System) Capacity() int {
	return len(s.slots)
}

/**
 * @brief Spawns up to n particles at Origin.
 *
 * @return The number of particles spawned, lower than n when the pool is full.
 */
func (s *System) Spawn(n int) int {
	spawned := 0
	for ; spawned < n; spawned++ {
		e, err := s.free.Dequeue()
		if err != nil {
			core.LogDebug("particles: pool of %d is full", s.Capacity())
			break
		}
		s.slots[e] = len(s.particles)
		s.entities = append(s.entities, e)
		s.particles = append(s.particles, Particle{
			Position: s.Origin,
			Scale:    math.NewVec2One(),
			Colour:   math.NewVec4One(),
			Lifetime: s.Lifetime,
		})
		if s.OnSpawn != nil {
			s.OnSpawn(e, &s.particles[len(s.particles)-1])
		}
	}
	return spawned
}

func (s *System) Get(e Entity) (*Particle, bool) {
	if int(e) >= len(s.slots) || s.slots[e] < 0 {
		return nil, false
	}
	return &s.particles[s.slots[e]], true
}

/**
 * @brief Removes a live particle. OnDeath runs before it is removed. Kills
 * issued from a callback during Update take effect once the update pass ends,
 * and the killed particle is not visited again in that pass.
 */
func (s *System) Kill(e Entity) bool {
	if int(e) >= len(s.slots) || s.slots[e] < 0 || s.killed[e] {
		return false
	}
	if s.updating {
		s.killed[e] = true
		s.pending = append(s.pending, e)
		return true
	}
	s.remove(s.slots[e])
	return true
}

func (s *System) remove(slot int) {
	e := s.entities[slot]
	if s.OnDeath != nil {
		s.OnDeath(e, &s.particles[slot])
	}
	last := len(s.particles) - 1
	if slot != last {
		s.particles[slot] = s.particles[last]
		s.entities[slot] = s.entities[last]
		s.slots[s.entities[slot]] = slot
	}
	s.particles = s.particles[:last]
	s.entities = s.entities[:last]
	s.slots[e] = -1
	_ = s.free.Enqueue(e)
}

/**
 * @brief Advances the simulation: emits SpawnRate * dt particles, ages and
 * integrates every particle, then removes the ones past their lifetime.
 */
func (s *System) Update(dt float32) {
	if s.SpawnRate > 0 {
		s.accumulator += s.SpawnRate * dt
		n := int(s.accumulator)
		s.accumulator -= float32(n)
		s.Spawn(n)
	}

	s.updating = true
	for i := 0; i < len(s.particles); {
		if s.killed[s.entities[i]] {
			i++
			continue
		}
		p := &s.particles[i]
		p.Age += dt
		if p.Lifetime > 0 && p.Age >= p.Lifetime {
			// the last particle moves into i and is visited next
			s.remove(i)
			continue
		}
		p.Velocity = p.Velocity.Add(p.Acceleration.MulScalar(dt))
		p.Position = p.Position.Add(p.Velocity.MulScalar(dt))
		p.Angle += p.AngularVelocity * dt
		if s.OnUpdate != nil {
			s.OnUpdate(s.entities[i], p, dt)
		}
		i++
	}
	s.updating = false

	for _, e := range s.pending {
		s.killed[e] = false
		if slot := s.slots[e]; slot >= 0 {
			s.remove(slot)
		}
	}
	s.pending = s.pending[:0]
}

// ForEach visits the live particles in storage order.
func (s *System) ForEach(fn func(e Entity, p *Particle)) {
	for i := range s.particles {
		fn(s.entities[i], &s.particles[i])
	}
}

// Clear kills every particle without running OnDeath.
func (s *System) Clear() {
	for _, e := range s.entities {
		s.slots[e] = -1
		_ = s.free.Enqueue(e)
	}
	for _, e := range s.pending {
		s.killed[e] = false
	}
	s.pending = s.pending[:0]
	s.particles = s.particles[:0]
	s.entities = s.entities[:0]
	s.accumulator = 0
}

/**
 * @brief Stages every particle on r. Textured systems submit one sprite
 * instance list sized by Scale, untextured ones rotated rectangles.
 */
func (s *System) Draw(r *systems.Renderer, drawType metadata.DrawType) {
	if len(s.particles) == 0 {
		return
	}
	if s.Texture == nil {
		for i := range s.particles {
			p := &s.particles[i]
			r.DrawRotatedRectangle(p.Position, p.Scale, p.Angle, p.Colour, drawType)
		}
		return
	}
	instances := make([]metadata.SpriteInstance, len(s.particles))
	for i := range s.particles {
		p := &s.particles[i]
		instances[i] = metadata.SpriteInstance{
			Position: p.Position,
			Scale:    p.Scale,
			Angle:    p.Angle,
			TexRect:  math.NewVec4(0, 0, 1, 1),
			Colour:   p.Colour,
		}
	}
	r.DrawInstances(instances, s.Texture, s.Shader, drawType)
}

/**
 * @brief Returns a spawn callback throwing particles from the origin with a
 * random direction inside [minAngle, maxAngle] and a random speed.
 */
func RandomBurst(rng *math.Random, minAngle, maxAngle, minSpeed, maxSpeed float32) SpawnFunc {
	return func(_ Entity, p *Particle) {
		dir := math.NewVec2(1, 0).Rotated(rng.InRange(minAngle, maxAngle))
		p.Velocity = dir.MulScalar(rng.InRange(minSpeed, maxSpeed))
	}
}
