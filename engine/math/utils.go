package math

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp linearly interpolates between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Random is a seeded float32 generator for simulation code (particles, jitter).
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Float returns a value in [0, 1).
func (r *Random) Float() float32 {
	return r.rng.Float32()
}

// InRange returns a value in [min, max).
func (r *Random) InRange(min, max float32) float32 {
	return min + r.rng.Float32()*(max-min)
}

// IntInRange returns a value in [min, max].
func (r *Random) IntInRange(min, max int) int {
	return min + r.rng.Intn(max-min+1)
}

// Vec2InRange returns a vector whose components are drawn independently from the ranges.
func (r *Random) Vec2InRange(min, max Vec2) Vec2 {
	return Vec2{X: r.InRange(min.X, max.X), Y: r.InRange(min.Y, max.Y)}
}
