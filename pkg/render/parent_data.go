package render

import "github.com/go-loom/loom/pkg/graphics"

// BoxParentData is the default placement metadata a parent attaches to each
// child: the child's offset within the parent. Written by the parent during
// its own layout, read by the parent during paint and hit testing.
type BoxParentData struct {
	Offset graphics.Offset
}

// ProxyObject is a single-child object that delegates constraints unchanged
// and sizes itself to the child. Embed it to build pass-through objects.
type ProxyObject struct{}

// Layout lays out the first child with the incoming constraints and adopts
// its size. With no child it takes the smallest permitted size.
func (ProxyObject) Layout(ctx LayoutContext, constraints graphics.Constraints) graphics.Size {
	if ctx.ChildCount() == 0 {
		return constraints.Smallest()
	}
	size := ctx.LayoutChild(0, constraints, true)
	ctx.SetChildOffset(0, graphics.Offset{})
	return size
}

// Paint paints all children at their stored offsets.
func (ProxyObject) Paint(ctx PaintContext, offset graphics.Offset) {
	for i := 0; i < ctx.ChildCount(); i++ {
		ctx.PaintChild(i)
	}
}
