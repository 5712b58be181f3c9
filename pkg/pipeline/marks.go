package pipeline

import (
	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/render"
)

// MarkNeedsBuild schedules an element for rebuild in the next build flush.
// Inactive and defunct elements are ignored; stale ids are a no-op.
func (o *Owner) MarkNeedsBuild(id core.ElementID) {
	element, ok := o.tree.Get(id)
	if !ok || element.Lifecycle() != core.LifecycleActive {
		return
	}
	if element.Dirty() {
		return
	}
	element.SetDirty(true)
	if o.queue.Add(id) {
		o.needsFrame()
	}
}

// MarkNeedsLayout marks a render element as needing layout.
//
// The walk follows the relayout boundary pattern: each node on the path to
// the nearest boundary gets its NeedsLayout flag set so the layout pass
// descends through it, and the boundary itself joins the layout work-list.
// A second mark in the same frame is a no-op, which amortizes repeated marks
// before a flush.
func (o *Owner) MarkNeedsLayout(id core.ElementID) {
	element, ok := o.tree.Get(id)
	if !ok || element.Kind() != core.KindRender {
		return
	}
	state := element.RenderState()
	if !state.TrySet(render.FlagNeedsLayout) {
		return
	}

	parent := o.tree.RenderParent(id)
	if state.Has(render.FlagRelayoutBoundary) || parent.IsNone() {
		// Dirtiness stops here; the boundary re-lays-out with its cached
		// constraints instead of involving the parent.
		o.scheduleLayout(id, state)
		return
	}
	o.MarkNeedsLayout(parent)
}

// MarkParentNeedsLayout marks an element whose intrinsic size changed, not
// just its externally imposed constraints. The walk is unconditional and
// pierces relayout boundaries all the way to the topmost one: a boundary
// does not shield its parent from intrinsic-size changes.
func (o *Owner) MarkParentNeedsLayout(id core.ElementID) {
	element, ok := o.tree.Get(id)
	if !ok || element.Kind() != core.KindRender {
		return
	}
	state := element.RenderState()
	state.Set(render.FlagNeedsLayout)

	parent := o.tree.RenderParent(id)
	if parent.IsNone() {
		o.scheduleLayout(id, state)
		return
	}
	o.MarkParentNeedsLayout(parent)
}

// MarkNeedsPaint marks a render element as needing paint. Symmetric to
// MarkNeedsLayout but checked against the repaint boundary flag: the walk
// stops at the first boundary, whose cached layer is marked dirty and which
// joins the paint work-list. Parents reference that layer by identity, so
// they need no re-recording.
func (o *Owner) MarkNeedsPaint(id core.ElementID) {
	element, ok := o.tree.Get(id)
	if !ok || element.Kind() != core.KindRender {
		return
	}
	state := element.RenderState()
	if !state.TrySet(render.FlagNeedsPaint) {
		return
	}

	if state.Has(render.FlagRepaintBoundary) {
		if layer := state.Layer(); layer != nil {
			layer.MarkDirty()
		}
		o.schedulePaint(id, state)
		return
	}
	parent := o.tree.RenderParent(id)
	if parent.IsNone() {
		o.schedulePaint(id, state)
		return
	}
	o.MarkNeedsPaint(parent)
}
