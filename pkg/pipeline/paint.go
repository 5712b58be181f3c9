package pipeline

import (
	"context"
	"fmt"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/render"
)

// FlushPaint repaints dirty repaint boundaries, parents first. Each boundary
// records its subtree into its cached layer; clean descendant boundaries are
// referenced by layer identity without traversal, so paint work is confined
// to the boundaries that actually changed.
func (o *Owner) FlushPaint(ctx context.Context) error {
	for {
		list := o.drainPaintList()
		if len(list) == 0 {
			return nil
		}
		for i, id := range list {
			if err := ctx.Err(); err != nil {
				o.mu.Lock()
				o.paintList = append(o.paintList, list[i:]...)
				o.mu.Unlock()
				return &errors.PipelineError{
					Op:   "pipeline.FlushPaint",
					Kind: errors.KindCancelled,
					Err:  errors.ErrFrameCancelled,
				}
			}
			element, ok := o.tree.Get(id)
			if !ok {
				continue
			}
			state := element.RenderState()
			state.Clear(render.FlagInPaintList)
			if !state.Has(render.FlagNeedsPaint) {
				continue
			}
			o.repaintBoundary(element)
		}
	}
}

// repaintBoundary re-records one repaint boundary's subtree into its layer.
// The layer object survives across repaints so parents referencing it stay
// valid; only its content is replaced. A boundary whose layout is stale is
// left for the paint that follows its relayout.
func (o *Owner) repaintBoundary(element *core.Element) {
	state := element.RenderState()
	size, ok := state.Size()
	if !ok {
		return
	}

	recorder := &graphics.PictureRecorder{}
	canvas := recorder.BeginRecording(size)
	paintCtx := newPaintContext(o, element, canvas, graphics.Offset{})
	element.Object().Paint(paintCtx, graphics.Offset{})
	state.Clear(render.FlagNeedsPaint)
	state.EnsureLayer().SetContent(recorder.EndRecording())
}

// paintContext is the per-element render.PaintContext handed to an object's
// Paint method. All offsets are relative to the enclosing repaint boundary's
// origin; base carries the accumulated offset of the current element.
type paintContext struct {
	owner    *Owner
	element  *core.Element
	canvas   graphics.Canvas
	base     graphics.Offset
	children []core.ElementID
}

func newPaintContext(o *Owner, element *core.Element, canvas graphics.Canvas, base graphics.Offset) *paintContext {
	return &paintContext{
		owner:    o,
		element:  element,
		canvas:   canvas,
		base:     base,
		children: o.tree.RenderChildren(element.ID()),
	}
}

func (c *paintContext) Canvas() graphics.Canvas { return c.canvas }

func (c *paintContext) ChildCount() int { return len(c.children) }

func (c *paintContext) ChildOffset(i int) graphics.Offset {
	child, ok := c.owner.tree.Get(c.children[i])
	if !ok {
		return graphics.Offset{}
	}
	return child.RenderState().Offset()
}

// PaintChild paints child i at the offset stored during layout. A repaint
// boundary child contributes only a reference to its layer: repainted first
// if dirty, reused untouched otherwise.
func (c *paintContext) PaintChild(i int) {
	if i < 0 || i >= len(c.children) {
		panic(&errors.PipelineError{
			Op:   "pipeline.PaintChild",
			Kind: errors.KindPaint,
			Err:  fmt.Errorf("child index %d out of range [0,%d)", i, len(c.children)),
		})
	}
	child, ok := c.owner.tree.Get(c.children[i])
	if !ok {
		return
	}
	state := child.RenderState()
	offset := c.base.Add(state.Offset())

	if state.Has(render.FlagRepaintBoundary) {
		if state.Has(render.FlagNeedsPaint) || state.Layer() == nil {
			c.owner.repaintBoundary(child)
		}
		if layer := state.Layer(); layer != nil {
			c.canvas.DrawChildLayer(layer, offset)
		}
		return
	}

	childCtx := newPaintContext(c.owner, child, c.canvas, offset)
	child.Object().Paint(childCtx, offset)
	state.Clear(render.FlagNeedsPaint)
}
