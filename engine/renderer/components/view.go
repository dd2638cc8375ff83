package components

import (
	"github.com/spaghettifunk/anima2d/engine/math"
)

/**
 * @brief Camera state of a 2D renderer: the world rectangle centred on
 * Center and spanning Size, mapped onto a normalized viewport rectangle
 * of the render target.
 * NOTE: Do not set the fields directly, use the setters so the matrix is
 * recalculated when needed.
 */
type View struct {
	center math.Vec2
	size   math.Vec2
	/** @brief Rotation in radians, counter clockwise. */
	rotation float32
	/** @brief Normalized viewport (x, y, w, h), origin at the top-left of the target. */
	viewport math.Rect
	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	isDirty bool
	matrix  math.Mat4
	inverse math.Mat4
}

// NewView returns a view showing size world units around center on the full target.
func NewView(center, size math.Vec2) View {
	return View{
		center:   center,
		size:     size,
		viewport: math.NewRect(0, 0, 1, 1),
		isDirty:  true,
	}
}

// NewViewFromRect returns a view covering rect exactly.
func NewViewFromRect(rect math.Rect) View {
	return NewView(rect.Center(), rect.Size())
}

func (v *View) GetCenter() math.Vec2 {
	return v.center
}

func (v *View) SetCenter(center math.Vec2) {
	v.center = center
	v.isDirty = true
}

func (v *View) Move(offset math.Vec2) {
	v.center = v.center.Add(offset)
	v.isDirty = true
}

func (v *View) GetSize() math.Vec2 {
	return v.size
}

func (v *View) SetSize(size math.Vec2) {
	v.size = size
	v.isDirty = true
}

// Zoom scales the visible area, factors below 1 zoom in.
func (v *View) Zoom(factor float32) {
	v.size = v.size.MulScalar(factor)
	v.isDirty = true
}

func (v *View) GetRotation() float32 {
	return v.rotation
}

func (v *View) SetRotation(angle float32) {
	v.rotation = angle
	v.isDirty = true
}

func (v *View) GetViewport() math.Rect {
	return v.viewport
}

func (v *View) SetViewport(viewport math.Rect) {
	v.viewport = viewport
}

/**
 * @brief The world to clip transform, scale(2/w, 2/h) applied after translate(-center).
 */
func (v *View) GetMatrix() math.Mat4 {
	if v.isDirty {
		m := math.NewMat4Translation(math.NewVec3(-v.center.X, -v.center.Y, 0))
		if v.rotation != 0 {
			m = m.Mul(math.NewMat4EulerZ(-v.rotation))
		}
		m = m.Mul(math.NewMat4Scale(math.NewVec3(2.0/v.size.X, 2.0/v.size.Y, 1)))
		v.matrix = m
		v.inverse = m.Inverse()
		v.isDirty = false
	}
	return v.matrix
}

func (v *View) GetInverse() math.Mat4 {
	v.GetMatrix()
	return v.inverse
}

// ViewportPixels converts the normalized viewport into pixels with a bottom-left origin.
func (v *View) ViewportPixels(targetWidth, targetHeight uint32) (int32, int32, uint32, uint32) {
	tw, th := float32(targetWidth), float32(targetHeight)
	x := int32(v.viewport.X*tw + 0.5)
	w := uint32(v.viewport.Width*tw + 0.5)
	h := uint32(v.viewport.Height*th + 0.5)
	y := int32((1-v.viewport.Y-v.viewport.Height)*th + 0.5)
	return x, y, w, h
}

// ScreenToWorld maps a pixel position (origin top-left) on a target of the given size into world space.
func (v *View) ScreenToWorld(screen math.Vec2, targetWidth, targetHeight uint32) math.Vec2 {
	vx := v.viewport.X * float32(targetWidth)
	vy := v.viewport.Y * float32(targetHeight)
	vw := v.viewport.Width * float32(targetWidth)
	vh := v.viewport.Height * float32(targetHeight)

	ndc := math.NewVec2(
		2*(screen.X-vx)/vw-1,
		1-2*(screen.Y-vy)/vh,
	)
	return v.GetInverse().TransformPoint(ndc)
}

// WorldToScreen is the inverse of ScreenToWorld.
func (v *View) WorldToScreen(world math.Vec2, targetWidth, targetHeight uint32) math.Vec2 {
	vx := v.viewport.X * float32(targetWidth)
	vy := v.viewport.Y * float32(targetHeight)
	vw := v.viewport.Width * float32(targetWidth)
	vh := v.viewport.Height * float32(targetHeight)

	ndc := v.GetMatrix().TransformPoint(world)
	return math.NewVec2(
		vx+(ndc.X+1)*0.5*vw,
		vy+(1-ndc.Y)*0.5*vh,
	)
}
