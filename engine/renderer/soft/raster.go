package soft

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

/** @brief A vertex after the vertex stage, position in target pixels. */
type shaded struct {
	x, y     float32
	colour   math.Vec4
	texcoord math.Vec2
}

var unitQuad = [6]math.Vec2{
	{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0.5, Y: 0.5},
	{X: -0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5},
}

type rasterState struct {
	target   *surface
	viewport viewport
	blend    metadata.BlendParams
	kernel   Kernel
	ctx      *Context
	// clip window in pixels, max exclusive
	minX, minY, maxX, maxY int
}

func (r *SoftRenderer) newRasterState(p *program, target *surface) *rasterState {
	st := &rasterState{
		target:   target,
		viewport: r.viewport,
		blend:    r.blend,
		kernel:   p.kernel,
		ctx: &Context{
			Uniforms: p.uniforms,
			Time:     r.frame.Time,
			renderer: r,
			samplers: p.samplers,
		},
	}
	st.minX = max(0, int(r.viewport.x))
	st.minY = max(0, int(r.viewport.y))
	st.maxX = min(int(target.width), int(r.viewport.x)+int(r.viewport.width))
	st.maxY = min(int(target.height), int(r.viewport.y)+int(r.viewport.height))
	return st
}

// project maps a world position through the view projection into target pixels.
func (st *rasterState) project(m math.Mat4, p math.Vec2) (float32, float32) {
	clip := m.TransformPoint(p)
	x := float32(st.viewport.x) + (clip.X+1)*0.5*float32(st.viewport.width)
	y := float32(st.viewport.y) + (clip.Y+1)*0.5*float32(st.viewport.height)
	return x, y
}

func (st *rasterState) vertexStage(m math.Mat4, v metadata.Vertex) shaded {
	x, y := st.project(m, v.Position)
	return shaded{x: x, y: y, colour: v.Colour, texcoord: v.Texcoord}
}

func (st *rasterState) spriteStage(m math.Mat4, inst metadata.SpriteInstance, corner math.Vec2) shaded {
	local := corner.Mul(inst.Scale)
	s, c := math32.Sincos(inst.Angle)
	world := inst.Position.Add(math.NewVec2(local.X*c-local.Y*s, local.X*s+local.Y*c))
	x, y := st.project(m, world)
	return shaded{
		x:      x,
		y:      y,
		colour: inst.Colour,
		texcoord: math.NewVec2(
			inst.TexRect.X+(corner.X+0.5)*inst.TexRect.Z,
			inst.TexRect.Y+(0.5-corner.Y)*inst.TexRect.W,
		),
	}
}

func edge(a, b shaded, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether a counter clockwise edge owns the pixels lying exactly on it.
func topLeft(a, b shaded) bool {
	dx := b.x - a.x
	dy := b.y - a.y
	return dy < 0 || (dy == 0 && dx < 0)
}

/**
 * @brief Rasterizes one triangle sampling at pixel centres. Pixels on a
 * shared edge are owned by exactly one of the two triangles.
 */
func (st *rasterState) triangle(a, b, c shaded) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := max(st.minX, int(math32.Floor(math32.Min(a.x, math32.Min(b.x, c.x)))))
	maxX := min(st.maxX, int(math32.Ceil(math32.Max(a.x, math32.Max(b.x, c.x)))))
	minY := max(st.minY, int(math32.Floor(math32.Min(a.y, math32.Min(b.y, c.y)))))
	maxY := min(st.maxY, int(math32.Ceil(math32.Max(a.y, math32.Max(b.y, c.y)))))
	if minX >= maxX || minY >= maxY {
		return
	}

	tlBC, tlCA, tlAB := topLeft(b, c), topLeft(c, a), topLeft(a, b)
	inside := func(w float32, owns bool) bool {
		return w > 0 || (w == 0 && owns)
	}

	for py := minY; py < maxY; py++ {
		cy := float32(py) + 0.5
		for px := minX; px < maxX; px++ {
			cx := float32(px) + 0.5
			w0 := edge(b, c, cx, cy)
			w1 := edge(c, a, cx, cy)
			w2 := edge(a, b, cx, cy)
			if !inside(w0, tlBC) || !inside(w1, tlCA) || !inside(w2, tlAB) {
				continue
			}
			l0, l1, l2 := w0/area, w1/area, w2/area
			in := Fragment{
				Colour: a.colour.MulScalar(l0).Add(b.colour.MulScalar(l1)).Add(c.colour.MulScalar(l2)),
				Texcoord: math.NewVec2(
					a.texcoord.X*l0+b.texcoord.X*l1+c.texcoord.X*l2,
					a.texcoord.Y*l0+b.texcoord.Y*l1+c.texcoord.Y*l2,
				),
			}
			st.shade(uint32(px), uint32(py), in)
		}
	}
}

func (st *rasterState) shade(x, y uint32, in Fragment) {
	src := st.kernel(st.ctx, in)
	if st.target.quantized() {
		src = clamp01(src)
	}
	dst := st.target.texel(x, y)
	st.target.setTexel(x, y, blend(st.blend, src, dst))
}
