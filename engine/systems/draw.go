package systems

import (
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

const (
	DefaultCircleSegments = 32
	debugBoundsThickness  = 1
)

var debugBoundsColour = math.NewVec4(1, 0, 1, 1)

func (r *Renderer) resolveShader(name, fallback string, layout metadata.LayoutID) (metadata.ShaderID, bool) {
	if name == "" {
		name = fallback
	}
	id, ok := r.shaders.CheckShader(name)
	if !ok {
		return id, false
	}
	if sh, _ := r.shaders.Get(id); sh.Layout != layout {
		core.LogWarn("shader `%s` expects %s data, got %s, skipping the draw", name, sh.Layout, layout)
		return id, false
	}
	return id, true
}

func (r *Renderer) findBatch(layout metadata.LayoutID, config metadata.BatchConfiguration, required uint32) *Batch {
	b, err := r.registries[layout].FindOrCreateBatch(config, required)
	if err != nil {
		core.LogError("batch allocation: %s", err)
		panic(err)
	}
	return b
}

func (r *Renderer) textureOrDefault(t *Texture) metadata.TextureHandle {
	if t != nil {
		return t.Handle
	}
	if r.textures != nil && r.textures.DefaultTexture != nil {
		return r.textures.DefaultTexture.Handle
	}
	return 0
}

/**
 * @brief Stages one sprite instance. Sprites without a texture sample the
 * default white texture.
 *
 * @param sprite The sprite to draw.
 * @param shader The shader name, "sprite" when empty.
 * @param drawType The draw stability hint.
 */
func (r *Renderer) DrawSprite(sprite *Sprite, shader string, drawType metadata.DrawType) {
	id, ok := r.resolveShader(shader, DefaultSpriteShader, metadata.LayoutSprite)
	if !ok {
		return
	}
	config := metadata.BatchConfiguration{Shader: id, DrawType: drawType}
	config.Textures[0] = r.textureOrDefault(sprite.GetTexture())
	r.findBatch(metadata.LayoutSprite, config, 1).AddInstance(sprite.Instance())
}

/**
 * @brief Stages a list of instances sharing a texture, spread over as many
 * batches as needed.
 */
func (r *Renderer) DrawInstances(instances []metadata.SpriteInstance, texture *Texture, shader string, drawType metadata.DrawType) {
	if len(instances) == 0 {
		return
	}
	id, ok := r.resolveShader(shader, DefaultSpriteShader, metadata.LayoutSprite)
	if !ok {
		return
	}
	config := metadata.BatchConfiguration{Shader: id, DrawType: drawType}
	config.Textures[0] = r.textureOrDefault(texture)
	for len(instances) > 0 {
		b := r.findBatch(metadata.LayoutSprite, config, 1)
		n := min(uint32(len(instances)), b.GetFreeCapacity())
		b.AddInstances(instances[:n])
		instances = instances[n:]
	}
}

/**
 * @brief Stages one instance per glyph, placed by cumulative advance from the
 * text transform. With DebugTextBounds the laid out box is outlined as well.
 */
func (r *Renderer) DrawText(text *Text, shader string, drawType metadata.DrawType) {
	f := text.GetFont()
	if f == nil {
		core.LogWarn("text `%s` has no font", text.String)
		return
	}
	id, ok := r.resolveShader(shader, DefaultTextShader, metadata.LayoutSprite)
	if !ok {
		return
	}
	layout := f.Layout(text.String)
	t := text.Transform
	scale := t.GetScale()
	angle := t.GetAngle()

	for _, q := range layout.Quads {
		page := f.GetPage(q.Page)
		if page == nil {
			continue
		}
		config := metadata.BatchConfiguration{Shader: id, DrawType: drawType}
		config.Textures[0] = page.Handle
		r.findBatch(metadata.LayoutSprite, config, 1).AddInstance(metadata.SpriteInstance{
			Position: t.Apply(q.Center),
			Scale:    q.Size.Mul(scale),
			Angle:    angle,
			TexRect:  q.TexRect,
			Colour:   text.Colour,
		})
	}

	if r.DebugTextBounds && len(layout.Quads) > 0 {
		b := layout.Bounds
		corners := [4]math.Vec2{
			t.Apply(b.Min()),
			t.Apply(math.NewVec2(b.X+b.Width, b.Y)),
			t.Apply(b.Max()),
			t.Apply(math.NewVec2(b.X, b.Y+b.Height)),
		}
		for i := range corners {
			r.DrawLine(corners[i], corners[(i+1)%4], debugBoundsThickness, debugBoundsColour, drawType)
		}
	}
}

/**
 * @brief Stages a triangle list. The shader defaults to "textured" when a
 * texture is given and "basic" otherwise. Panics when the list does not fit
 * in a single batch.
 */
func (r *Renderer) DrawVertices(vertices []metadata.Vertex, shader string, drawType metadata.DrawType, textures ...metadata.TextureHandle) {
	if len(vertices) == 0 {
		return
	}
	fallback := DefaultShapeShader
	if len(textures) > 0 && textures[0] != 0 {
		fallback = DefaultTexturedShader
	}
	id, ok := r.resolveShader(shader, fallback, metadata.LayoutVertex)
	if !ok {
		return
	}
	config := metadata.BatchConfiguration{Shader: id, DrawType: drawType}
	copyTextures(&config, textures)
	r.findBatch(metadata.LayoutVertex, config, uint32(len(vertices))).AddVertices(vertices)
}

// DrawVerticesIndexed expands an indexed triangle list and stages it.
func (r *Renderer) DrawVerticesIndexed(vertices []metadata.Vertex, indices []uint32, shader string, drawType metadata.DrawType, textures ...metadata.TextureHandle) {
	r.DrawVertices(math.GeometryExpandIndexed(vertices, indices), shader, drawType, textures...)
}

func colouredQuad(corners [4]math.Vec2, colour math.Vec4) []metadata.Vertex {
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	out := make([]metadata.Vertex, 0, len(math.GeometryQuadIndices))
	for _, i := range math.GeometryQuadIndices {
		out = append(out, metadata.Vertex{Position: corners[i], Colour: colour, Texcoord: uvs[i]})
	}
	return out
}

// DrawRectangle fills an axis aligned rectangle.
func (r *Renderer) DrawRectangle(rect math.Rect, colour math.Vec4, drawType metadata.DrawType) {
	r.DrawRotatedRectangle(rect.Center(), rect.Size(), 0, colour, drawType)
}

// DrawRotatedRectangle fills a rectangle centred on center and rotated by angle radians.
func (r *Renderer) DrawRotatedRectangle(center, size math.Vec2, angle float32, colour math.Vec4, drawType metadata.DrawType) {
	r.DrawVertices(colouredQuad(math.GeometryRectangleCorners(center, size, angle), colour), "", drawType)
}

// DrawRectangleOutline draws the four edges of a rectangle, thickness growing inwards.
func (r *Renderer) DrawRectangleOutline(rect math.Rect, thickness float32, colour math.Vec4, drawType metadata.DrawType) {
	t := min(thickness, rect.Width*0.5, rect.Height*0.5)
	x0, y0 := rect.X, rect.Y
	x1, y1 := rect.X+rect.Width, rect.Y+rect.Height
	vertices := make([]metadata.Vertex, 0, 24)
	for _, edge := range []math.Rect{
		math.NewRect(x0, y0, rect.Width, t),
		math.NewRect(x0, y1-t, rect.Width, t),
		math.NewRect(x0, y0+t, t, rect.Height-2*t),
		math.NewRect(x1-t, y0+t, t, rect.Height-2*t),
	} {
		vertices = append(vertices, colouredQuad(math.GeometryRectangleCorners(edge.Center(), edge.Size(), 0), colour)...)
	}
	r.DrawVertices(vertices, "", drawType)
}

// DrawLine draws a segment as a quad of the given thickness.
func (r *Renderer) DrawLine(from, to math.Vec2, thickness float32, colour math.Vec4, drawType metadata.DrawType) {
	r.DrawVertices(colouredQuad(math.GeometryLineCorners(from, to, thickness), colour), "", drawType)
}

// DrawPolyline draws consecutive segments, closing the loop when closed is set.
func (r *Renderer) DrawPolyline(points []math.Vec2, thickness float32, colour math.Vec4, closed bool, drawType metadata.DrawType) {
	if len(points) < 2 {
		return
	}
	segments := len(points) - 1
	if closed {
		segments = len(points)
	}
	vertices := make([]metadata.Vertex, 0, segments*6)
	for i := 0; i < segments; i++ {
		a, b := points[i], points[(i+1)%len(points)]
		vertices = append(vertices, colouredQuad(math.GeometryLineCorners(a, b, thickness), colour)...)
	}
	r.DrawVertices(vertices, "", drawType)
}

// DrawCircle fills a circle tessellated into segments perimeter points around the centre.
func (r *Renderer) DrawCircle(center math.Vec2, radius float32, colour math.Vec4, segments int, drawType metadata.DrawType) {
	r.DrawEllipse(center, math.NewVec2(radius, radius), 0, colour, segments, drawType)
}

/**
 * @brief Fills an ellipse. The perimeter points and the centre are joined by
 * the fan index list [centre, i, i+1], wrapping back to the first point.
 */
func (r *Renderer) DrawEllipse(center, radii math.Vec2, angle float32, colour math.Vec4, segments int, drawType metadata.DrawType) {
	if segments <= 0 {
		segments = DefaultCircleSegments
	}
	points, indices := math.GeometryEllipseFan(center, radii, angle, segments)
	vertices := make([]metadata.Vertex, len(points))
	for i, p := range points {
		uv := math.NewVec2(0.5, 0.5)
		if radii.X != 0 && radii.Y != 0 {
			d := p.Sub(center)
			if angle != 0 {
				d = d.Rotated(-angle)
			}
			uv = math.NewVec2(0.5+d.X/(2*radii.X), 0.5+d.Y/(2*radii.Y))
		}
		vertices[i] = metadata.Vertex{Position: p, Colour: colour, Texcoord: uv}
	}
	r.DrawVerticesIndexed(vertices, indices, "", drawType)
}

// DrawCircleOutline draws the perimeter of a circle as a closed polyline.
func (r *Renderer) DrawCircleOutline(center math.Vec2, radius, thickness float32, colour math.Vec4, segments int, drawType metadata.DrawType) {
	r.DrawEllipseOutline(center, math.NewVec2(radius, radius), 0, thickness, colour, segments, drawType)
}

func (r *Renderer) DrawEllipseOutline(center, radii math.Vec2, angle, thickness float32, colour math.Vec4, segments int, drawType metadata.DrawType) {
	if segments <= 0 {
		segments = DefaultCircleSegments
	}
	r.DrawPolyline(math.GeometryEllipseOutline(center, radii, angle, segments), thickness, colour, true, drawType)
}
