package termcore

import "sort"

// LayerID stably and uniquely identifies a Layer within a Compositor
// for the lifetime of the process.
type LayerID int

// Bounds is a layer's rectangle within the compositor's output area.
type Bounds struct {
	X, Y, Width, Height int
}

// Layer is one named rendering target owned by a Compositor.
type Layer struct {
	ID      LayerID
	Bounds  Bounds
	ZIndex  int
	Visible bool
	Buffer  *Buffer
}

// Compositor owns an ordered set of Layers and produces an up-to-date
// output Buffer on demand, doing the minimum work: it re-composites
// only when something is dirty, and returns its cached output
// otherwise (the idle fast path).
type Compositor struct {
	layers      map[LayerID]*Layer
	renderOrder []LayerID
	output      *Buffer
	dirty       map[LayerID]struct{}
	nextID      LayerID
	logger      *LogCapture
}

// NewCompositor allocates a compositor with the given output area.
func NewCompositor(width, height int, logger *LogCapture) *Compositor {
	return &Compositor{
		layers: make(map[LayerID]*Layer),
		output: NewBuffer(width, height),
		dirty:  make(map[LayerID]struct{}),
		logger: logger,
	}
}

// Resize changes the output buffer's dimensions and marks every layer
// dirty, since every layer must be recomposited against the new area.
func (c *Compositor) Resize(width, height int) {
	c.output = NewBuffer(width, height)
	for id := range c.layers {
		c.dirty[id] = struct{}{}
	}
}

// CreateLayer allocates a new Layer, assigns it a stable id, inserts
// it into the render-order cache, and marks it dirty.
func (c *Compositor) CreateLayer(bounds Bounds, zIndex int) LayerID {
	id := c.nextID
	c.nextID++

	layer := &Layer{
		ID:      id,
		Bounds:  bounds,
		ZIndex:  zIndex,
		Visible: true,
		Buffer:  NewBuffer(bounds.Width, bounds.Height),
	}
	c.layers[id] = layer
	c.renderOrder = append(c.renderOrder, id)
	c.sortRenderOrder()
	c.dirty[id] = struct{}{}
	return id
}

func (c *Compositor) sortRenderOrder() {
	sort.Slice(c.renderOrder, func(i, j int) bool {
		a, b := c.layers[c.renderOrder[i]], c.layers[c.renderOrder[j]]
		if a.ZIndex != b.ZIndex {
			return a.ZIndex < b.ZIndex
		}
		return a.ID < b.ID
	})
}

// SetVisible changes a layer's visibility, marking it dirty only if
// the value actually changed. Unknown ids are no-ops, logged at debug
// level.
func (c *Compositor) SetVisible(id LayerID, visible bool) {
	layer, ok := c.layers[id]
	if !ok {
		c.logUnknown("SetVisible", id)
		return
	}
	if layer.Visible == visible {
		return
	}
	layer.Visible = visible
	c.dirty[id] = struct{}{}
}

// MoveLayer repositions a layer, marking it dirty only if the position
// actually changed.
func (c *Compositor) MoveLayer(id LayerID, x, y int) {
	layer, ok := c.layers[id]
	if !ok {
		c.logUnknown("MoveLayer", id)
		return
	}
	if layer.Bounds.X == x && layer.Bounds.Y == y {
		return
	}
	layer.Bounds.X = x
	layer.Bounds.Y = y
	c.dirty[id] = struct{}{}
}

// ResizeLayer reallocates a layer's buffer to a new size, marking it
// dirty only if the size actually changed.
func (c *Compositor) ResizeLayer(id LayerID, width, height int) {
	layer, ok := c.layers[id]
	if !ok {
		c.logUnknown("ResizeLayer", id)
		return
	}
	if layer.Bounds.Width == width && layer.Bounds.Height == height {
		return
	}
	layer.Bounds.Width = width
	layer.Bounds.Height = height
	layer.Buffer = NewBuffer(width, height)
	c.dirty[id] = struct{}{}
}

// SetZIndex changes a layer's z-order, re-sorting the render-order
// cache and marking it dirty only if the value actually changed.
func (c *Compositor) SetZIndex(id LayerID, z int) {
	layer, ok := c.layers[id]
	if !ok {
		c.logUnknown("SetZIndex", id)
		return
	}
	if layer.ZIndex == z {
		return
	}
	layer.ZIndex = z
	c.sortRenderOrder()
	c.dirty[id] = struct{}{}
}

// LayerBufferMut returns an exclusive, scoped borrow of a layer's
// buffer for the renderer to write into this tick. Callers must not
// retain it past the current tick.
func (c *Compositor) LayerBufferMut(id LayerID) *Buffer {
	layer, ok := c.layers[id]
	if !ok {
		c.logUnknown("LayerBufferMut", id)
		return nil
	}
	return layer.Buffer
}

// MarkLayerDirty flags a layer as needing recomposite. Idempotent;
// called by surface renderers after writing a layer whose content
// changed.
func (c *Compositor) MarkLayerDirty(id LayerID) {
	if _, ok := c.layers[id]; !ok {
		c.logUnknown("MarkLayerDirty", id)
		return
	}
	c.dirty[id] = struct{}{}
}

// IsDirty reports whether any layer currently needs recomposite.
func (c *Compositor) IsDirty() bool {
	return len(c.dirty) > 0
}

// Composite produces an up-to-date output buffer, doing the minimum
// work: if nothing is dirty it returns the cached output unchanged (the
// idle fast path); otherwise it clears the output and re-merges every
// visible layer in ascending (z_index, id) order, then clears the
// dirty set.
//
// Re-compositing every visible layer rather than only the dirty ones
// avoids tracking per-cell occlusion and stale regions from
// moved/resized layers, at O(sum of layer cell counts) cost — the
// performance win is the idle early-return above, not partial work
// here.
func (c *Compositor) Composite() *Buffer {
	if len(c.dirty) == 0 {
		return c.output
	}

	c.output.Reset()
	for _, id := range c.renderOrder {
		layer := c.layers[id]
		if !layer.Visible {
			continue
		}
		c.output.Merge(layer.Buffer, layer.Bounds.X, layer.Bounds.Y)
	}
	c.dirty = make(map[LayerID]struct{})
	return c.output
}

func (c *Compositor) logUnknown(op string, id LayerID) {
	if c.logger != nil {
		c.logger.Debug("compositor: %s on unknown layer id %d", op, id)
	}
}
