package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol = 1e-5

func TestMat4MulAppliesLeftFirst(t *testing.T) {
	tr := NewMat4Translation(NewVec3(-10, -20, 0))
	sc := NewMat4Scale(NewVec3(2, 3, 1))
	m := tr.Mul(sc)

	p := m.TransformPoint(NewVec2(11, 21))
	assert.InDelta(t, 2, p.X, tol)
	assert.InDelta(t, 3, p.Y, tol)
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4Translation(NewVec3(5, -7, 0)).Mul(NewMat4EulerZ(0.7)).Mul(NewMat4Scale(NewVec3(0.25, 4, 1)))
	inv := m.Inverse()
	id := m.Mul(inv)
	expected := NewMat4Identity()
	for i := range id.Data {
		assert.InDelta(t, expected.Data[i], id.Data[i], 1e-4, "element %d", i)
	}

	p := NewVec2(3, 9)
	back := inv.TransformPoint(m.TransformPoint(p))
	assert.True(t, back.Compare(p, 1e-4))
}

func TestOrthographicMapsBoundsToClip(t *testing.T) {
	m := NewMat4Orthographic(0, 800, 0, 600, -1, 1)
	lo := m.TransformPoint(NewVec2(0, 0))
	hi := m.TransformPoint(NewVec2(800, 600))
	assert.True(t, lo.Compare(NewVec2(-1, -1), tol))
	assert.True(t, hi.Compare(NewVec2(1, 1), tol))
}

func TestTransform2DLocal(t *testing.T) {
	tr := NewTransform2DFromPosition(NewVec2(10, 0))
	tr.SetAngle(K_HALF_PI)
	tr.SetScale(NewVec2(2, 2))

	p := tr.Apply(NewVec2(1, 0))
	assert.InDelta(t, 10, p.X, 1e-4)
	assert.InDelta(t, 2, p.Y, 1e-4)

	tr.Translate(NewVec2(0, 5))
	p = tr.Apply(NewVec2(0, 0))
	assert.InDelta(t, 10, p.X, 1e-4)
	assert.InDelta(t, 5, p.Y, 1e-4)
}

func TestRect(t *testing.T) {
	r := NewRect(0, 0, 10, 4)
	assert.Equal(t, NewVec2(5, 2), r.Center())
	assert.True(t, r.Contains(NewVec2(0, 0)))
	assert.False(t, r.Contains(NewVec2(10, 2)))
	assert.True(t, r.Intersects(NewRect(9, 3, 5, 5)))
	assert.False(t, r.Intersects(NewRect(10, 0, 5, 5)))
}

func TestGeometryEllipseFanWraps(t *testing.T) {
	points, indices := GeometryEllipseFan(NewVec2(1, 1), NewVec2(2, 2), 0, 8)
	assert.Len(t, points, 9)
	assert.Len(t, indices, 24)
	assert.Equal(t, []uint32{0, 8, 1}, indices[21:24])
	for _, p := range points[1:] {
		assert.InDelta(t, 2, p.Distance(NewVec2(1, 1)), 1e-4)
	}

	tris := GeometryExpandIndexed(points, indices)
	assert.Len(t, tris, 24)
	assert.Equal(t, points[0], tris[0])
}

func TestGeometryLineCorners(t *testing.T) {
	c := GeometryLineCorners(NewVec2(0, 0), NewVec2(10, 0), 2)
	assert.True(t, c[0].Compare(NewVec2(0, -1), tol))
	assert.True(t, c[2].Compare(NewVec2(10, 1), tol))
}

func TestClampAndLerp(t *testing.T) {
	assert.Equal(t, 5, Clamp(12, 0, 5))
	assert.Equal(t, float32(0), Clamp(float32(-1), 0, 1))
	assert.InDelta(t, 7.5, Lerp(5.0, 10.0, 0.5), tol)
}

func TestRandomInRange(t *testing.T) {
	r := NewRandom(7)
	for i := 0; i < 100; i++ {
		v := r.InRange(-3, 3)
		assert.GreaterOrEqual(t, v, float32(-3))
		assert.Less(t, v, float32(3))
		n := r.IntInRange(1, 4)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 4)
	}
}

func TestAnglesAndColours(t *testing.T) {
	assert.InDelta(t, K_HALF_PI, DegToRad(90), tol)
	assert.InDelta(t, 180, RadToDeg(K_PI), 1e-3)
	assert.Equal(t, NewVec4(1, 0, 1, 0), NewColourRGBA8(255, 0, 255, 0))
	assert.InDelta(t, 0.2, NewColourRGBA8(51, 0, 0, 0).X, tol)
}
