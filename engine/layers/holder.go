package layers

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/effects"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

/**
 * @brief Draw layers keyed by a unique depth, composited in ascending depth
 * order. Every named layer holds exactly one depth.
 */
type LayersHolder struct {
	factory effects.Factory
	width   uint32
	height  uint32
	layers  map[int]*DrawLayer
	depths  map[string]int
}

func NewLayersHolder(factory effects.Factory, width, height uint32) *LayersHolder {
	return &LayersHolder{
		factory: factory,
		width:   width,
		height:  height,
		layers:  make(map[int]*DrawLayer),
		depths:  make(map[string]int),
	}
}

func (h *LayersHolder) sortedDepths() []int {
	return slices.Sorted(maps.Keys(h.layers))
}

/**
 * @brief Creates a layer sized like the holder.
 *
 * @param name A unique layer name.
 * @param depth A free depth. Higher depths are drawn on top.
 * @param options The canvas texture options.
 */
func (h *LayersHolder) AddLayer(name string, depth int, options metadata.TextureOptions) (*DrawLayer, error) {
	if _, ok := h.depths[name]; ok {
		return nil, fmt.Errorf("layer `%s`: %w", name, core.ErrLayerExists)
	}
	if other, ok := h.layers[depth]; ok {
		return nil, fmt.Errorf("layer `%s` depth %d held by `%s`: %w", name, depth, other.Name, core.ErrDepthOccupied)
	}
	l, err := newDrawLayer(h.factory, name, depth, h.width, h.height, options)
	if err != nil {
		core.LogError("layer `%s`: %s", name, err)
		return nil, err
	}
	h.layers[depth] = l
	h.depths[name] = depth
	core.LogDebug("layer `%s` added at depth %d", name, depth)
	return l, nil
}

func (h *LayersHolder) GetLayer(name string) (*DrawLayer, bool) {
	depth, ok := h.depths[name]
	if !ok {
		return nil, false
	}
	return h.layers[depth], true
}

func (h *LayersHolder) GetLayerByDepth(depth int) (*DrawLayer, bool) {
	l, ok := h.layers[depth]
	return l, ok
}

func (h *LayersHolder) HasLayer(name string) bool {
	_, ok := h.depths[name]
	return ok
}

/**
 * @brief Moves a layer to another depth. Moving onto an occupied depth does
 * nothing: the current occupant keeps its slot.
 *
 * @return false when the layer is unknown or the depth is taken.
 */
func (h *LayersHolder) ChangeDepth(name string, depth int) bool {
	current, ok := h.depths[name]
	if !ok {
		core.LogWarn("change depth: layer `%s` not found", name)
		return false
	}
	if current == depth {
		return true
	}
	if other, ok := h.layers[depth]; ok {
		core.LogWarn("change depth: depth %d is held by `%s`, `%s` stays at %d", depth, other.Name, name, current)
		return false
	}
	l := h.layers[current]
	delete(h.layers, current)
	h.layers[depth] = l
	h.depths[name] = depth
	l.depth = depth
	return true
}

func (h *LayersHolder) RemoveLayer(name string) error {
	depth, ok := h.depths[name]
	if !ok {
		return fmt.Errorf("layer `%s`: %w", name, core.ErrLayerNotFound)
	}
	h.layers[depth].Destroy()
	delete(h.layers, depth)
	delete(h.depths, name)
	return nil
}

func (h *LayersHolder) setActive(name string, fn func(l *DrawLayer)) error {
	l, ok := h.GetLayer(name)
	if !ok {
		return fmt.Errorf("layer `%s`: %w", name, core.ErrLayerNotFound)
	}
	fn(l)
	return nil
}

func (h *LayersHolder) ActivateLayer(name string) error {
	return h.setActive(name, func(l *DrawLayer) { l.SetActive(true) })
}

func (h *LayersHolder) DeactivateLayer(name string) error {
	return h.setActive(name, func(l *DrawLayer) { l.SetActive(false) })
}

func (h *LayersHolder) ToggleLayer(name string) error {
	return h.setActive(name, (*DrawLayer).Toggle)
}

// DrawInto composites every active layer into target, lowest depth first.
func (h *LayersHolder) DrawInto(frame metadata.FrameContext, target *systems.Renderer) {
	for _, depth := range h.sortedDepths() {
		if l := h.layers[depth]; l.IsActive() {
			l.drawInto(frame, target)
		}
	}
}

// ClearAll clears every layer canvas, inactive ones included.
func (h *LayersHolder) ClearAll() {
	for _, l := range h.layers {
		l.Clear()
	}
}

/**
 * @brief Resizes every layer. Zero sizes, sent while the window is minimized,
 * are rejected and leave the layers untouched.
 */
func (h *LayersHolder) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogWarn("layers: resize to %dx%d rejected", width, height)
		return core.ErrInvalidSize
	}
	for _, depth := range h.sortedDepths() {
		if err := h.layers[depth].Resize(width, height); err != nil {
			return err
		}
	}
	h.width, h.height = width, height
	return nil
}

// Renderers returns the layer canvases, lowest depth first.
func (h *LayersHolder) Renderers() []*systems.Renderer {
	depths := h.sortedDepths()
	out := make([]*systems.Renderer, 0, len(depths))
	for _, d := range depths {
		out = append(out, h.layers[d].GetCanvas())
	}
	return out
}

// Names returns the layer names, lowest depth first.
func (h *LayersHolder) Names() []string {
	depths := h.sortedDepths()
	out := make([]string, 0, len(depths))
	for _, d := range depths {
		out = append(out, h.layers[d].Name)
	}
	return out
}

func (h *LayersHolder) Len() int {
	return len(h.layers)
}

func (h *LayersHolder) Destroy() {
	for _, depth := range h.sortedDepths() {
		h.layers[depth].Destroy()
	}
	h.layers = make(map[int]*DrawLayer)
	h.depths = make(map[string]int)
}
