package math

import "github.com/chewxy/math32"

// GeometryRectangleCorners returns the four corners of a rectangle centred on center,
// rotated by angle radians, in counter clockwise order starting bottom-left.
func GeometryRectangleCorners(center, size Vec2, angle float32) [4]Vec2 {
	hw, hh := size.X*0.5, size.Y*0.5
	corners := [4]Vec2{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	for i := range corners {
		if angle != 0 {
			corners[i] = corners[i].Rotated(angle)
		}
		corners[i] = corners[i].Add(center)
	}
	return corners
}

// GeometryQuadIndices is the two-triangle index list for four corners
// laid out like GeometryRectangleCorners.
var GeometryQuadIndices = [6]uint32{0, 1, 2, 0, 2, 3}

// GeometryLineCorners expands a segment into a quad of the given thickness.
// A zero length segment yields a degenerate quad at from.
func GeometryLineCorners(from, to Vec2, thickness float32) [4]Vec2 {
	dir := to.Sub(from).Normalized()
	n := dir.Perpendicular().MulScalar(thickness * 0.5)
	return [4]Vec2{
		from.Sub(n),
		to.Sub(n),
		to.Add(n),
		from.Add(n),
	}
}

// GeometryEllipseFan tessellates an ellipse into segments perimeter points plus the
// centre (index 0). The returned index list is a triangle fan written out as
// triangles: [centre, i, i+1] for each step, wrapping back to the first perimeter point.
func GeometryEllipseFan(center, radii Vec2, angle float32, segments int) ([]Vec2, []uint32) {
	if segments < 3 {
		segments = 3
	}
	points := make([]Vec2, 0, segments+1)
	points = append(points, center)
	step := K_PI_2 / float32(segments)
	for i := 0; i < segments; i++ {
		s, c := math32.Sincos(step * float32(i))
		p := Vec2{X: c * radii.X, Y: s * radii.Y}
		if angle != 0 {
			p = p.Rotated(angle)
		}
		points = append(points, p.Add(center))
	}

	indices := make([]uint32, 0, segments*3)
	for i := 1; i <= segments; i++ {
		next := i + 1
		if next > segments {
			next = 1
		}
		indices = append(indices, 0, uint32(i), uint32(next))
	}
	return points, indices
}

// GeometryEllipseOutline returns the perimeter points of an ellipse without the centre.
func GeometryEllipseOutline(center, radii Vec2, angle float32, segments int) []Vec2 {
	points, _ := GeometryEllipseFan(center, radii, angle, segments)
	return points[1:]
}

// GeometryExpandIndexed flattens an indexed list into plain triangles. Indices out
// of range are skipped together with the rest of their triangle.
func GeometryExpandIndexed[T any](vertices []T, indices []uint32) []T {
	out := make([]T, 0, len(indices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := uint32(len(vertices))
		if a >= n || b >= n || c >= n {
			continue
		}
		out = append(out, vertices[a], vertices[b], vertices[c])
	}
	return out
}
