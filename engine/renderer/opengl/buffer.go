package opengl

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

type glBuffer struct {
	vao      uint32
	vbo      uint32
	layout   metadata.LayoutID
	capacity uint32
}

// unit quad corners drawn once per sprite instance
var quadCorners = []float32{
	-0.5, -0.5, 0.5, -0.5, 0.5, 0.5,
	-0.5, -0.5, 0.5, 0.5, -0.5, 0.5,
}

func (r *OpenGLRenderer) createQuad() {
	gl.GenBuffers(1, &r.quadVbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadCorners)*4, gl.Ptr(quadCorners), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func setupVertexLayout(stride int32) {
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
}

func (r *OpenGLRenderer) setupSpriteLayout(b *glBuffer, stride int32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))

	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	attributes := []struct {
		size   int32
		offset int
	}{
		{2, 0},  // position
		{2, 8},  // scale
		{1, 16}, // angle
		{4, 20}, // texture rectangle
		{4, 36}, // colour
	}
	for i, a := range attributes {
		loc := uint32(i + 1)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointer(loc, a.size, gl.FLOAT, false, stride, gl.PtrOffset(a.offset))
		gl.VertexAttribDivisor(loc, 1)
	}
}

func (r *OpenGLRenderer) newBuffer(layout metadata.LayoutID, capacity uint32, drawType metadata.DrawType) *glBuffer {
	b := &glBuffer{layout: layout, capacity: capacity}
	stride := int32(layout.Stride())

	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, int(capacity)*int(stride), nil, glUsage(drawType))

	if layout == metadata.LayoutSprite {
		r.setupSpriteLayout(b, stride)
	} else {
		setupVertexLayout(stride)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b
}

func (b *glBuffer) draw(count uint32) {
	gl.BindVertexArray(b.vao)
	if b.layout == metadata.LayoutSprite {
		gl.DrawArraysInstanced(gl.TRIANGLES, 0, int32(len(quadCorners)/2), int32(count))
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(count))
	}
	gl.BindVertexArray(0)
}

func (b *glBuffer) destroy() {
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
}
