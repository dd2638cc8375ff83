package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func triangle(colour math.Vec4) []metadata.Vertex {
	return []metadata.Vertex{
		{Position: math.NewVec2(0, 0), Colour: colour},
		{Position: math.NewVec2(1, 0), Colour: colour},
		{Position: math.NewVec2(0, 1), Colour: colour},
	}
}

func TestBatchRegistryBucketsByConfiguration(t *testing.T) {
	reg := NewBatchRegistry(newSoftBackend(t), metadata.LayoutVertex, 4)
	a := metadata.BatchConfiguration{Shader: 1, DrawType: metadata.DrawTypeDynamic}
	b := metadata.BatchConfiguration{Shader: 2, DrawType: metadata.DrawTypeDynamic}

	first, err := reg.FindOrCreateBatch(a, 3)
	require.NoError(t, err)
	first.AddVertices(triangle(red))

	second, err := reg.FindOrCreateBatch(a, 3)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	second.AddVertices(triangle(red))

	other, err := reg.FindOrCreateBatch(b, 1)
	require.NoError(t, err)
	other.AddVertices(triangle(green)[:1])

	// the remaining unit of the first batch is reused
	reused, err := reg.FindFreeBatch(a, 1)
	require.NoError(t, err)
	assert.Same(t, first, reused)

	assert.Equal(t, []metadata.BatchConfiguration{a, b}, reg.Configurations())
	assert.Len(t, reg.Batches(a), 2)
	assert.Len(t, reg.Batches(b), 1)
	assert.Equal(t, 3, reg.BatchCount())
	assert.Equal(t, uint32(1), first.GetFreeCapacity())
}

func TestBatchCapacityExceeded(t *testing.T) {
	reg := NewBatchRegistry(newSoftBackend(t), metadata.LayoutVertex, 4)
	config := metadata.BatchConfiguration{Shader: 1}

	err := recoverError(func() { _, _ = reg.FindOrCreateBatch(config, 5) })
	require.ErrorIs(t, err, core.ErrCapacityExceeded)

	b, err := reg.FindOrCreateBatch(config, 3)
	require.NoError(t, err)
	b.AddVertices(triangle(red))
	err = recoverError(func() { b.AddVertices(triangle(red)) })
	require.ErrorIs(t, err, core.ErrCapacityExceeded)
	assert.Equal(t, uint32(3), b.UsedCount())
}

func TestBatchLayoutMismatchPanics(t *testing.T) {
	reg := NewBatchRegistry(newSoftBackend(t), metadata.LayoutSprite, 4)
	b, err := reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: 1}, 1)
	require.NoError(t, err)
	assert.Panics(t, func() { b.AddVertices(triangle(red)) })
	assert.Nil(t, b.Vertices())
}

func TestBatchStagingRoundTrip(t *testing.T) {
	reg := NewBatchRegistry(newSoftBackend(t), metadata.LayoutSprite, 8)
	b, err := reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: 1}, 2)
	require.NoError(t, err)

	instances := []metadata.SpriteInstance{
		{Position: math.NewVec2(1, 2), Scale: math.NewVec2One(), Colour: red},
		{Position: math.NewVec2(3, 4), Scale: math.NewVec2One(), Angle: 1, Colour: green},
	}
	b.AddInstances(instances)
	assert.Equal(t, instances, b.Instances())

	b.Clear()
	assert.Equal(t, uint32(0), b.UsedCount())
	assert.Empty(t, b.Instances())
}

func TestBatchRegistryClearKeepsStatic(t *testing.T) {
	reg := NewBatchRegistry(newSoftBackend(t), metadata.LayoutVertex, 16)
	dynamic, err := reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: 1, DrawType: metadata.DrawTypeDynamic}, 3)
	require.NoError(t, err)
	dynamic.AddVertices(triangle(red))
	stream, err := reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: 1, DrawType: metadata.DrawTypeStream}, 3)
	require.NoError(t, err)
	stream.AddVertices(triangle(red))
	static, err := reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: 1, DrawType: metadata.DrawTypeStatic}, 3)
	require.NoError(t, err)
	static.AddVertices(triangle(red))

	reg.Clear()
	reg.Clear()
	assert.Equal(t, uint32(0), dynamic.UsedCount())
	assert.Equal(t, uint32(0), stream.UsedCount())
	assert.Equal(t, uint32(3), static.UsedCount())
	assert.Equal(t, 3, reg.BatchCount())

	reg.Reset()
	assert.Equal(t, 0, reg.BatchCount())
	assert.Empty(t, reg.Configurations())
}

func TestStaticBatchUploadsOnce(t *testing.T) {
	backend := newSoftBackend(t)
	shaders := NewShaderSystem(&ShaderSystemConfig{}, backend)
	id, err := shaders.Load(DefaultShapeShader)
	require.NoError(t, err)

	reg := NewBatchRegistry(backend, metadata.LayoutVertex, 16)
	static, err := reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: id, DrawType: metadata.DrawTypeStatic}, 3)
	require.NoError(t, err)
	static.AddVertices(triangle(red))
	dynamic, err := reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: id, DrawType: metadata.DrawTypeDynamic}, 3)
	require.NoError(t, err)
	dynamic.AddVertices(triangle(green))

	backend.ResetStats()
	vp := math.NewMat4Identity()
	reg.RenderAll(shaders, vp, metadata.FrameContext{}, math.NewVec2(16, 16))
	reg.RenderAll(shaders, vp, metadata.FrameContext{}, math.NewVec2(16, 16))

	stats := backend.Stats()
	assert.Equal(t, 4, stats.DrawCalls)
	// static once, dynamic on both flushes
	assert.Equal(t, 3, stats.BufferUploads)
}

func TestRenderAllSkipsMissingShader(t *testing.T) {
	backend := newSoftBackend(t)
	shaders := NewShaderSystem(&ShaderSystemConfig{}, backend)
	reg := NewBatchRegistry(backend, metadata.LayoutVertex, 16)
	b, err := reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: 42}, 3)
	require.NoError(t, err)
	b.AddVertices(triangle(red))

	backend.ResetStats()
	reg.RenderAll(shaders, math.NewMat4Identity(), metadata.FrameContext{}, math.NewVec2(16, 16))
	assert.Equal(t, 0, backend.Stats().DrawCalls)
	assert.Equal(t, uint32(3), b.UsedCount())
}

func TestEmptyBatchIsNotDrawn(t *testing.T) {
	backend := newSoftBackend(t)
	shaders := NewShaderSystem(&ShaderSystemConfig{}, backend)
	id, err := shaders.Load(DefaultShapeShader)
	require.NoError(t, err)
	reg := NewBatchRegistry(backend, metadata.LayoutVertex, 16)
	_, err = reg.FindOrCreateBatch(metadata.BatchConfiguration{Shader: id}, 3)
	require.NoError(t, err)

	backend.ResetStats()
	reg.RenderAll(shaders, math.NewMat4Identity(), metadata.FrameContext{}, math.NewVec2(16, 16))
	assert.Equal(t, 0, backend.Stats().DrawCalls)
}
