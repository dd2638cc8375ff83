package math

func NewTransform2D() *Transform2D {
	return &Transform2D{
		scale:   NewVec2One(),
		isDirty: true,
		local:   NewMat4Identity(),
	}
}

func NewTransform2DFromPosition(position Vec2) *Transform2D {
	t := NewTransform2D()
	t.position = position
	return t
}

func (t *Transform2D) GetPosition() Vec2 {
	return t.position
}

func (t *Transform2D) SetPosition(position Vec2) {
	t.position = position
	t.isDirty = true
}

func (t *Transform2D) Translate(translation Vec2) {
	t.position = t.position.Add(translation)
	t.isDirty = true
}

func (t *Transform2D) GetAngle() float32 {
	return t.angle
}

func (t *Transform2D) SetAngle(angle float32) {
	t.angle = angle
	t.isDirty = true
}

func (t *Transform2D) Rotate(angle float32) {
	t.angle += angle
	t.isDirty = true
}

func (t *Transform2D) GetScale() Vec2 {
	return t.scale
}

func (t *Transform2D) SetScale(scale Vec2) {
	t.scale = scale
	t.isDirty = true
}

func (t *Transform2D) Scale(scale Vec2) {
	t.scale = t.scale.Mul(scale)
	t.isDirty = true
}

func (t *Transform2D) GetOrigin() Vec2 {
	return t.origin
}

func (t *Transform2D) SetOrigin(origin Vec2) {
	t.origin = origin
	t.isDirty = true
}

// GetLocal returns the local matrix, recomputing it only when a property changed.
// Order: move to origin, scale, rotate, translate.
func (t *Transform2D) GetLocal() Mat4 {
	if t.isDirty {
		o := NewMat4Translation(NewVec3(-t.origin.X, -t.origin.Y, 0))
		s := NewMat4Scale(NewVec3(t.scale.X, t.scale.Y, 1))
		r := NewMat4EulerZ(t.angle)
		p := NewMat4Translation(NewVec3(t.position.X, t.position.Y, 0))
		t.local = o.Mul(s).Mul(r).Mul(p)
		t.isDirty = false
	}
	return t.local
}

// Apply transforms a local point into world space.
func (t *Transform2D) Apply(p Vec2) Vec2 {
	return t.GetLocal().TransformPoint(p)
}
