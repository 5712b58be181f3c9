package render

import "github.com/go-loom/loom/pkg/graphics"

// Object is the render boundary: the pipeline does not know how a size or a
// layer is computed, only that the contract is honored. Layout receives
// immutable constraints and returns a size; Paint receives the element's
// offset within its repaint boundary and records drawing operations.
//
// Contexts are passed explicitly so that an object can only reach its own
// children, and only through calls whose ordering the pipeline can enforce.
type Object interface {
	Layout(ctx LayoutContext, constraints graphics.Constraints) graphics.Size
	Paint(ctx PaintContext, offset graphics.Offset)
}

// RepaintBoundary is implemented by objects that repaint in their own cached
// layer, isolating their subtree's paint dirtiness from the parent.
type RepaintBoundary interface {
	IsRepaintBoundary() bool
}

// RelayoutDelimiter is implemented by objects that never size themselves to
// their children, forcing a relayout boundary regardless of constraints.
type RelayoutDelimiter interface {
	SizedByParent() bool
}

// HitTester is implemented by objects with non-rectangular hit regions.
// Objects without it are hit when the position lies within their size.
type HitTester interface {
	HitTestSelf(position graphics.Offset, size graphics.Size) bool
}

// Disposable is implemented by objects holding resources to release when
// their element is disposed.
type Disposable interface {
	Dispose()
}

// LayoutContext gives an object access to its children during layout.
// Constraint propagation is strictly top-down and size reporting strictly
// bottom-up: a child's size is only readable after LayoutChild has returned
// for that child in the current pass.
type LayoutContext interface {
	// ChildCount returns the number of render children.
	ChildCount() int
	// LayoutChild lays out child i with the given constraints and returns
	// its size. parentUsesSize reports whether this object's own size
	// depends on the child's; when false the child becomes a relayout
	// boundary.
	LayoutChild(i int, constraints graphics.Constraints, parentUsesSize bool) graphics.Size
	// ChildSize returns the size of child i. It panics if the child has not
	// completed layout in the current pass: reading a stale child size is a
	// programming error in the object's layout method.
	ChildSize(i int) graphics.Size
	// SetChildOffset positions child i relative to this object's origin.
	SetChildOffset(i int, offset graphics.Offset)
	// SetChildParentData attaches placement metadata to child i. The data is
	// owned by the child's tree slot, written only by this object during its
	// own layout.
	SetChildParentData(i int, data any)
	// ChildParentData returns metadata previously attached to child i.
	ChildParentData(i int) any
}

// PaintContext gives an object access to a recording canvas and its children
// during paint. Children paint at the offsets stored during layout.
type PaintContext interface {
	// Canvas returns the recording canvas for this object's repaint boundary.
	Canvas() graphics.Canvas
	// ChildCount returns the number of render children.
	ChildCount() int
	// ChildOffset returns the offset stored for child i during layout.
	ChildOffset(i int) graphics.Offset
	// PaintChild paints child i at its stored offset. If the child is a
	// repaint boundary with a clean layer, the cached layer is referenced
	// without traversing the child's subtree.
	PaintChild(i int)
}
