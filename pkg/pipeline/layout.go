package pipeline

import (
	"context"
	"fmt"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/render"
)

// FlushLayout lays out dirty relayout boundaries, parents first. Each
// boundary re-lays-out with its cached constraints, so layout work beneath a
// boundary never involves its parent. The loop drains until no boundaries
// remain: a layout method calling MarkNeedsLayout re-enters the list.
//
// rootConstraints are imposed on the root render element; a change from the
// previous frame dirties it.
func (o *Owner) FlushLayout(ctx context.Context, rootConstraints graphics.Constraints) error {
	o.prepareRoot(rootConstraints)

	for {
		list := o.drainLayoutList()
		if len(list) == 0 {
			return nil
		}
		for i, id := range list {
			if err := ctx.Err(); err != nil {
				o.mu.Lock()
				o.layoutList = append(o.layoutList, list[i:]...)
				o.mu.Unlock()
				return &errors.PipelineError{
					Op:   "pipeline.FlushLayout",
					Kind: errors.KindCancelled,
					Err:  errors.ErrFrameCancelled,
				}
			}
			element, ok := o.tree.Get(id)
			if !ok {
				continue
			}
			state := element.RenderState()
			state.Clear(render.FlagInLayoutList)
			if !state.Has(render.FlagNeedsLayout) {
				// Cleaned by an ancestor's pass earlier in this drain.
				continue
			}
			constraints, ok := o.boundaryConstraints(element, rootConstraints)
			if !ok {
				continue
			}
			o.layoutElement(element, constraints, false)
		}
	}
}

// prepareRoot keeps the root render element a relayout and repaint boundary
// and dirties it when the imposed constraints change.
func (o *Owner) prepareRoot(rootConstraints graphics.Constraints) {
	rootRender := o.root.RenderRoot()
	if rootRender.IsNone() {
		return
	}
	element, ok := o.tree.Get(rootRender)
	if !ok {
		return
	}
	state := element.RenderState()
	state.Set(render.FlagRelayoutBoundary | render.FlagRepaintBoundary)
	if last, has := state.LastConstraints(); !has || last != rootConstraints {
		o.MarkNeedsLayout(rootRender)
	}
	if state.Has(render.FlagNeedsLayout) {
		o.scheduleLayout(rootRender, state)
	}
}

// boundaryConstraints resolves the constraints a boundary re-lays-out with:
// the root takes the externally imposed constraints, every other boundary
// its cached ones. A boundary without cached constraints has never been laid
// out and is reached through its parent instead.
func (o *Owner) boundaryConstraints(element *core.Element, rootConstraints graphics.Constraints) (graphics.Constraints, bool) {
	if element.ID() == o.root.RenderRoot() {
		return rootConstraints, true
	}
	return element.RenderState().LastConstraints()
}

// layoutElement performs layout for one render element: it resolves the
// element's relayout boundary status, skips clean subtrees under unchanged
// constraints, and otherwise delegates sizing to the object within an
// invalidate/commit window on the geometry cell.
func (o *Owner) layoutElement(element *core.Element, constraints graphics.Constraints, parentUsesSize bool) graphics.Size {
	state := element.RenderState()

	isBoundary := constraints.IsTight() ||
		!parentUsesSize ||
		o.tree.RenderParent(element.ID()).IsNone()
	if delimiter, ok := element.Object().(render.RelayoutDelimiter); ok && delimiter.SizedByParent() {
		isBoundary = true
	}
	if isBoundary {
		state.Set(render.FlagRelayoutBoundary)
	} else {
		state.Clear(render.FlagRelayoutBoundary)
	}

	if !state.Has(render.FlagNeedsLayout) {
		if last, ok := state.LastConstraints(); ok && last == constraints {
			if geometry, ok := state.Geometry(); ok {
				return geometry.Size
			}
		}
	}

	previous, hadPrevious := state.CommittedSize()
	state.InvalidateGeometry()

	layoutCtx := newLayoutContext(o, element)
	size := element.Object().Layout(layoutCtx, constraints)
	if !constraints.IsSatisfiedBy(size) {
		o.log.Warn().
			Str("element", element.ID().String()).
			Msg("layout returned a size violating its constraints")
		size = constraints.Constrain(size)
	}
	state.CommitGeometry(render.Geometry{Constraints: constraints, Size: size})
	state.Clear(render.FlagNeedsLayout)

	if !hadPrevious || previous != size {
		o.MarkNeedsPaint(element.ID())
	} else if state.Has(render.FlagNeedsPaint) && state.Has(render.FlagRepaintBoundary) {
		// A paint skipped earlier because this boundary's layout was stale
		// must run now that the layout is clean.
		o.schedulePaint(element.ID(), state)
	}
	return size
}

// layoutContext is the per-element render.LayoutContext handed to an
// object's Layout method. Children are the nearest render descendants;
// non-render elements between parent and child are transparent to layout.
type layoutContext struct {
	owner    *Owner
	element  *core.Element
	children []core.ElementID
	laidOut  []bool
}

func newLayoutContext(o *Owner, element *core.Element) *layoutContext {
	children := o.tree.RenderChildren(element.ID())
	return &layoutContext{
		owner:    o,
		element:  element,
		children: children,
		laidOut:  make([]bool, len(children)),
	}
}

func (c *layoutContext) ChildCount() int { return len(c.children) }

func (c *layoutContext) LayoutChild(i int, constraints graphics.Constraints, parentUsesSize bool) graphics.Size {
	child := c.child(i, "pipeline.LayoutChild")
	size := c.owner.layoutElement(child, constraints, parentUsesSize)
	c.laidOut[i] = true
	return size
}

func (c *layoutContext) ChildSize(i int) graphics.Size {
	if i < 0 || i >= len(c.laidOut) || !c.laidOut[i] {
		panic(&errors.PipelineError{
			Op:   "pipeline.ChildSize",
			Kind: errors.KindLayout,
			Err:  fmt.Errorf("child %d size read before LayoutChild in the current pass", i),
		})
	}
	child := c.child(i, "pipeline.ChildSize")
	size, _ := child.RenderState().Size()
	return size
}

func (c *layoutContext) SetChildOffset(i int, offset graphics.Offset) {
	child := c.child(i, "pipeline.SetChildOffset")
	state := child.RenderState()
	if state.Offset() != offset {
		state.SetOffset(offset)
		// Moving a child moves its cached layer reference, so the enclosing
		// boundary must re-record even if the child itself is clean.
		c.owner.MarkNeedsPaint(c.element.ID())
	}
	if data, ok := child.ParentData().(*render.BoxParentData); ok {
		data.Offset = offset
	}
}

func (c *layoutContext) SetChildParentData(i int, data any) {
	c.child(i, "pipeline.SetChildParentData").SetParentData(data)
}

func (c *layoutContext) ChildParentData(i int) any {
	return c.child(i, "pipeline.ChildParentData").ParentData()
}

func (c *layoutContext) child(i int, op string) *core.Element {
	if i < 0 || i >= len(c.children) {
		panic(&errors.PipelineError{
			Op:   op,
			Kind: errors.KindLayout,
			Err:  fmt.Errorf("child index %d out of range [0,%d)", i, len(c.children)),
		})
	}
	child, ok := c.owner.tree.Get(c.children[i])
	if !ok {
		panic(&errors.PipelineError{
			Op:   op,
			Kind: errors.KindLayout,
			Err:  fmt.Errorf("child %s removed during layout", c.children[i]),
		})
	}
	return child
}
