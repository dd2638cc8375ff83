package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

const (
	/** @brief Default capacity of a sprite batch, in instances. */
	DefaultMaxInstancesPerBatch uint32 = 40000
	/** @brief Default capacity of a vertex batch, in vertices. */
	DefaultMaxVerticesPerBatch uint32 = 65000
)

/**
 * @brief One GPU buffer plus its CPU staging copy, holding draws that share a
 * configuration. UsedCount never exceeds Capacity.
 */
type Batch struct {
	Configuration metadata.BatchConfiguration
	Layout        metadata.LayoutID

	backend   renderer.Backend
	buffer    metadata.BufferHandle
	capacity  uint32
	usedCount uint32
	staging   []byte
	/** @brief Staged data not uploaded yet. Only static batches look at it. */
	dirty bool
}

func newBatch(backend renderer.Backend, layout metadata.LayoutID, config metadata.BatchConfiguration, capacity uint32) (*Batch, error) {
	buffer, err := backend.RenderBufferCreate(layout, capacity, config.DrawType)
	if err != nil {
		return nil, fmt.Errorf("batch %s/%s: %w", layout, config.DrawType, err)
	}
	return &Batch{
		Configuration: config,
		Layout:        layout,
		backend:       backend,
		buffer:        buffer,
		capacity:      capacity,
	}, nil
}

func (b *Batch) UsedCount() uint32 {
	return b.usedCount
}

func (b *Batch) Capacity() uint32 {
	return b.capacity
}

func (b *Batch) GetFreeCapacity() uint32 {
	return b.capacity - b.usedCount
}

func (b *Batch) reserve(count uint32) {
	if count > b.GetFreeCapacity() {
		panic(fmt.Errorf("batch %s holds %d/%d, cannot add %d: %w",
			b.Layout, b.usedCount, b.capacity, count, core.ErrCapacityExceeded))
	}
}

/**
 * @brief Appends a triangle list to the staging copy. Panics when the batch
 * cannot hold every vertex.
 */
func (b *Batch) AddVertices(vertices []metadata.Vertex) {
	if b.Layout != metadata.LayoutVertex {
		panic(fmt.Sprintf("batch: vertices added to a %s batch", b.Layout))
	}
	n := uint32(len(vertices))
	b.reserve(n)
	b.staging = append(b.staging, metadata.VertexBytes(vertices)...)
	b.usedCount += n
	b.dirty = true
}

/**
 * @brief Appends one instance to the staging copy. Panics when the batch is full.
 */
func (b *Batch) AddInstance(instance metadata.SpriteInstance) {
	b.AddInstances([]metadata.SpriteInstance{instance})
}

func (b *Batch) AddInstances(instances []metadata.SpriteInstance) {
	if b.Layout != metadata.LayoutSprite {
		panic(fmt.Sprintf("batch: instances added to a %s batch", b.Layout))
	}
	n := uint32(len(instances))
	b.reserve(n)
	b.staging = append(b.staging, metadata.SpriteInstanceBytes(instances)...)
	b.usedCount += n
	b.dirty = true
}

// Vertices returns the staged vertices of a vertex batch.
func (b *Batch) Vertices() []metadata.Vertex {
	if b.Layout != metadata.LayoutVertex {
		return nil
	}
	return metadata.BytesAsVertices(b.staging, b.usedCount)
}

// Instances returns the staged instances of a sprite batch.
func (b *Batch) Instances() []metadata.SpriteInstance {
	if b.Layout != metadata.LayoutSprite {
		return nil
	}
	return metadata.BytesAsSpriteInstances(b.staging, b.usedCount)
}

/**
 * @brief Uploads the staged data when needed and issues one draw call covering it.
 * Non static batches upload on every flush, static ones only after new data was staged.
 *
 * @param shaders The registry owning the configuration's shader.
 * @param sh The configuration's shader.
 * @param viewProjection The view matrix uploaded as u_view_projection.
 * @param frame The per frame values.
 * @param resolution The render target size, uploaded as u_resolution.
 */
func (b *Batch) Flush(shaders *ShaderSystem, sh *Shader, viewProjection math.Mat4, frame metadata.FrameContext, resolution math.Vec2) {
	if b.usedCount == 0 {
		return
	}
	shaders.apply(sh, viewProjection, frame, resolution)
	for slot, texture := range b.Configuration.Textures {
		if texture != 0 {
			b.backend.TextureBind(texture, uint32(slot))
		}
	}
	shaders.bindPinned(sh)

	if b.Configuration.DrawType != metadata.DrawTypeStatic || b.dirty {
		if err := b.backend.RenderBufferLoadRange(b.buffer, 0, b.staging); err != nil {
			core.LogError("batch upload: %s", err)
			return
		}
		b.dirty = false
	}
	b.backend.RenderBufferDraw(b.buffer, b.usedCount)
}

// Clear empties the staging copy, the GPU buffer stays allocated.
func (b *Batch) Clear() {
	b.usedCount = 0
	b.staging = b.staging[:0]
	b.dirty = true
}

func (b *Batch) Destroy() {
	if b.buffer != 0 {
		b.backend.RenderBufferDestroy(b.buffer)
		b.buffer = 0
	}
	b.staging = nil
	b.usedCount = 0
}

/**
 * @brief Buckets of batches keyed by configuration, for one layout. Buckets
 * are flushed in the order their configuration was first seen.
 */
type BatchRegistry struct {
	Layout   metadata.LayoutID
	capacity uint32
	backend  renderer.Backend
	order    []metadata.BatchConfiguration
	buckets  map[metadata.BatchConfiguration][]*Batch
}

func NewBatchRegistry(backend renderer.Backend, layout metadata.LayoutID, capacity uint32) *BatchRegistry {
	return &BatchRegistry{
		Layout:   layout,
		capacity: capacity,
		backend:  backend,
		buckets:  make(map[metadata.BatchConfiguration][]*Batch),
	}
}

func (r *BatchRegistry) Capacity() uint32 {
	return r.capacity
}

/**
 * @brief Returns a batch under config with room for required units. The bucket
 * and its first batch are created on first use.
 */
func (r *BatchRegistry) FindOrCreateBatch(config metadata.BatchConfiguration, required uint32) (*Batch, error) {
	if _, ok := r.buckets[config]; !ok {
		if required > r.capacity {
			panic(fmt.Errorf("%d units requested from a %s batch of %d: %w", required, r.Layout, r.capacity, core.ErrCapacityExceeded))
		}
		b, err := newBatch(r.backend, r.Layout, config, r.capacity)
		if err != nil {
			return nil, err
		}
		r.order = append(r.order, config)
		r.buckets[config] = []*Batch{b}
		return b, nil
	}
	return r.FindFreeBatch(config, required)
}

/**
 * @brief Returns the first batch of the bucket with room for required units,
 * appending a new batch when every batch is full. Panics when required exceeds
 * the capacity of a single batch.
 */
func (r *BatchRegistry) FindFreeBatch(config metadata.BatchConfiguration, required uint32) (*Batch, error) {
	if required > r.capacity {
		panic(fmt.Errorf("%d units requested from a %s batch of %d: %w", required, r.Layout, r.capacity, core.ErrCapacityExceeded))
	}
	bucket, ok := r.buckets[config]
	if !ok {
		return r.FindOrCreateBatch(config, required)
	}
	for _, b := range bucket {
		if b.GetFreeCapacity() >= required {
			return b, nil
		}
	}
	b, err := newBatch(r.backend, r.Layout, config, r.capacity)
	if err != nil {
		return nil, err
	}
	r.buckets[config] = append(bucket, b)
	return b, nil
}

/**
 * @brief Flushes every batch, bucket by bucket in insertion order. Buckets whose
 * shader is no longer registered are skipped.
 */
func (r *BatchRegistry) RenderAll(shaders *ShaderSystem, viewProjection math.Mat4, frame metadata.FrameContext, resolution math.Vec2) {
	for _, config := range r.order {
		sh, ok := shaders.Get(config.Shader)
		if !ok {
			core.LogWarn("batch: shader %d not found, skipping %d batches", config.Shader, len(r.buckets[config]))
			continue
		}
		for _, b := range r.buckets[config] {
			b.Flush(shaders, sh, viewProjection, frame, resolution)
		}
	}
}

// Clear empties every dynamic and stream batch. Static batches keep their content.
func (r *BatchRegistry) Clear() {
	for _, bucket := range r.buckets {
		for _, b := range bucket {
			if b.Configuration.DrawType != metadata.DrawTypeStatic {
				b.Clear()
			}
		}
	}
}

// Reset drops every bucket and releases the GPU buffers.
func (r *BatchRegistry) Reset() {
	for _, bucket := range r.buckets {
		for _, b := range bucket {
			b.Destroy()
		}
	}
	r.order = nil
	r.buckets = make(map[metadata.BatchConfiguration][]*Batch)
}

func (r *BatchRegistry) Batches(config metadata.BatchConfiguration) []*Batch {
	return r.buckets[config]
}

// Configurations returns the bucket keys in flush order.
func (r *BatchRegistry) Configurations() []metadata.BatchConfiguration {
	out := make([]metadata.BatchConfiguration, len(r.order))
	copy(out, r.order)
	return out
}

// BatchCount returns the number of batches over every bucket.
func (r *BatchRegistry) BatchCount() int {
	n := 0
	for _, bucket := range r.buckets {
		n += len(bucket)
	}
	return n
}
