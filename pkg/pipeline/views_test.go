package pipeline

import (
	"context"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/render"
)

// boxObject is a leaf render object with a fixed preferred size. Layout and
// paint invocations are counted so tests can assert which subtrees the
// pipeline actually visited.
type boxObject struct {
	size     graphics.Size
	color    graphics.Color
	boundary bool

	layouts  int
	paints   int
	disposed bool
}

func (b *boxObject) Layout(ctx render.LayoutContext, constraints graphics.Constraints) graphics.Size {
	b.layouts++
	return constraints.Constrain(b.size)
}

func (b *boxObject) Paint(ctx render.PaintContext, offset graphics.Offset) {
	b.paints++
	ctx.Canvas().DrawRect(graphics.RectFromOffsetSize(offset, b.size), b.color)
}

func (b *boxObject) IsRepaintBoundary() bool { return b.boundary }

func (b *boxObject) Dispose() { b.disposed = true }

// box is a leaf render view backed by boxObject.
type box struct {
	key      any
	size     graphics.Size
	boundary bool
}

func (b box) Key() any { return b.key }

func (b box) CreateObject(ctx core.BuildContext) render.Object {
	return &boxObject{size: b.size, boundary: b.boundary}
}

func (b box) UpdateObject(ctx core.BuildContext, object render.Object) {
	object.(*boxObject).size = b.size
}

// columnObject stacks children vertically at loose constraints.
type columnObject struct {
	layouts int
	paints  int
}

func (c *columnObject) Layout(ctx render.LayoutContext, constraints graphics.Constraints) graphics.Size {
	c.layouts++
	var width, height float64
	for i := 0; i < ctx.ChildCount(); i++ {
		size := ctx.LayoutChild(i, graphics.Loose(constraints.Biggest()), true)
		ctx.SetChildOffset(i, graphics.Offset{Y: height})
		height += size.Height
		if size.Width > width {
			width = size.Width
		}
	}
	return constraints.Constrain(graphics.Size{Width: width, Height: height})
}

func (c *columnObject) Paint(ctx render.PaintContext, offset graphics.Offset) {
	c.paints++
	for i := 0; i < ctx.ChildCount(); i++ {
		ctx.PaintChild(i)
	}
}

// column is a multi-child render view backed by columnObject.
type column struct {
	key      any
	children []core.View
}

func (c column) Key() any { return c.key }

func (c column) CreateObject(ctx core.BuildContext) render.Object { return &columnObject{} }

func (c column) UpdateObject(ctx core.BuildContext, object render.Object) {}

func (c column) ChildViews() []core.View { return c.children }

// tightObject lays out its child with tight constraints of the given size,
// making the child a relayout boundary.
type tightObject struct {
	size    graphics.Size
	layouts int
}

func (w *tightObject) Layout(ctx render.LayoutContext, constraints graphics.Constraints) graphics.Size {
	w.layouts++
	if ctx.ChildCount() > 0 {
		ctx.LayoutChild(0, graphics.Tight(w.size), false)
		ctx.SetChildOffset(0, graphics.Offset{})
	}
	return constraints.Constrain(w.size)
}

func (w *tightObject) Paint(ctx render.PaintContext, offset graphics.Offset) {
	for i := 0; i < ctx.ChildCount(); i++ {
		ctx.PaintChild(i)
	}
}

// tight is a single-child render view imposing tight constraints.
type tight struct {
	key   any
	size  graphics.Size
	child core.View
}

func (t tight) Key() any { return t.key }

func (t tight) CreateObject(ctx core.BuildContext) render.Object {
	return &tightObject{size: t.size}
}

func (t tight) UpdateObject(ctx core.BuildContext, object render.Object) {
	object.(*tightObject).size = t.size
}

func (t tight) ChildView() core.View { return t.child }

// comp is a component view with pluggable build logic.
type comp struct {
	key   any
	build func(core.BuildContext) core.View
}

func (c comp) Key() any { return c.key }

func (c comp) Build(ctx core.BuildContext) core.View {
	if c.build != nil {
		return c.build(ctx)
	}
	return nil
}

// holder is a stateful view whose state exposes its lifecycle history.
type holder struct {
	key any
}

func (h holder) Key() any { return h.key }

func (h holder) CreateState() core.State { return &holderState{} }

type holderState struct {
	core.StateBase
	builds      int
	didUpdates  int
	activates   int
	deactivates int
	disposes    int

	// buildChild is returned from Build when set.
	buildChild core.View
}

func (s *holderState) Build(ctx core.BuildContext) core.View {
	s.builds++
	return s.buildChild
}

func (s *holderState) DidUpdate(old core.StatefulView) { s.didUpdates++ }
func (s *holderState) Activate()                       { s.activates++ }
func (s *holderState) Deactivate()                     { s.deactivates++ }
func (s *holderState) Dispose() {
	s.disposes++
	s.StateBase.Dispose()
}

func newTestOwner() *Owner {
	return NewOwner(Options{})
}

// testingT is the subset of testing.T the helpers need; *rapid.T satisfies
// it too, so property tests can share them.
type testingT interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

// pump runs one full frame against the owner with the given surface size.
func pump(t testingT, o *Owner, size graphics.Size) {
	t.Helper()
	ctx := context.Background()
	if err := o.FlushBuild(ctx); err != nil {
		t.Fatalf("FlushBuild: %v", err)
	}
	if err := o.FlushLayout(ctx, graphics.Tight(size)); err != nil {
		t.Fatalf("FlushLayout: %v", err)
	}
	if err := o.FlushPaint(ctx); err != nil {
		t.Fatalf("FlushPaint: %v", err)
	}
}

// findByView returns the first element whose view matches the predicate.
func findByView(o *Owner, match func(core.View) bool) *core.Element {
	var found *core.Element
	o.Tree().Walk(o.Root().Root(), func(element *core.Element) bool {
		if match(element.View()) {
			found = element
			return false
		}
		return true
	})
	return found
}

func objectOf[T render.Object](t testingT, o *Owner, match func(core.View) bool) T {
	t.Helper()
	element := findByView(o, match)
	if element == nil {
		t.Fatal("no element matches predicate")
	}
	object, ok := element.Object().(T)
	if !ok {
		t.Fatalf("object is %T", element.Object())
	}
	return object
}

var surface = graphics.Size{Width: 200, Height: 300}
